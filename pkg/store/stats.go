package store

import "context"

// DBStats holds aggregated statistics for the whole store.
type DBStats struct {
	Samples       []SampleInfo `json:"samples"`        // every stored sample
	TotalSamples  int          `json:"total_samples"`  // number of stored samples
	TotalWords    int          `json:"total_words"`    // lexicon words summed over samples
	TotalChains   int          `json:"total_chains"`   // chain keys summed over samples
	DistinctHash  int          `json:"distinct_hash"`  // samples with distinct content
	CachedSamples int          `json:"cached_samples"` // built samples held in memory
}

// GetStats returns a snapshot of statistics for the entire store.
func (s *Store) GetStats(ctx context.Context) (*DBStats, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DBStats{
		Samples:       infos,
		TotalSamples:  len(infos),
		CachedSamples: s.cache.Len(),
	}
	hashes := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		stats.TotalWords += info.LexiconSize
		stats.TotalChains += info.ChainSize
		hashes[info.Hash] = struct{}{}
	}
	stats.DistinctHash = len(hashes)
	return stats, nil
}
