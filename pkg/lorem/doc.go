/*
Package lorem generates plausible pseudo-text by modelling the structure of a
sample text and replaying it with a substitute vocabulary.

A Sample analyses a text and a lexicon once: it records a Markov chain over
pairs of consecutive word lengths, the pairs that may open a sentence, a
length-indexed dictionary of lexicon words, and the mean and standard
deviation of sentence and paragraph lengths. Samples are immutable and can be
shared freely.

A Generator draws words, sentences and paragraphs from a Sample. Lengths are
normally distributed around the sample statistics unless pinned by options,
and the randomness source can be injected for reproducible output.

	s, err := lorem.NewSample(text, lexicon, ",.?!", ".?!")
	if err != nil {
		return err
	}
	g := lorem.NewGenerator(s)
	sent, err := g.GenerateSentence(lorem.WithIncipit(true))
	if err != nil {
		return err
	}
	fmt.Println(sent.Words, sent.Text)
*/
package lorem
