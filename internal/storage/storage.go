package storage

import "rangePlanner/internal/model"

// DraftSink receives sized positions ready to be turned into mint calls.
type DraftSink interface {
	PutDraftBatch(drafts []model.PositionDraftRecord) error
}

// MultiSink fans a batch out to every sink in order and stops at the first
// failure.
type MultiSink []DraftSink

func (m MultiSink) PutDraftBatch(drafts []model.PositionDraftRecord) error {
	for _, sink := range m {
		if err := sink.PutDraftBatch(drafts); err != nil {
			return err
		}
	}
	return nil
}
