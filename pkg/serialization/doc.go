/*
Package serialization loads, dumps and removes lorem samples addressed by URL.

The URL scheme selects the medium: "file" (the default, also used for bare
paths), "data" (RFC 2397, load only), "package" (built-in samples, load
only) and "sqlite" (a sample store). Single files are written in one of the
registered content types, optionally wrapped in a content encoding; both are
guessed from the file extension unless given as options:

	sample.json          application/json
	sample.gob           application/octet-stream
	sample.tar.gz        application/x-tar, gzip
	sample.zip           application/zip
	sample.json.bz2      application/json, bzip2

A path without an extension is a directory holding the four ingredient
files. Content types, encodings and schemes live in registries and can be
extended with Register calls.
*/
package serialization
