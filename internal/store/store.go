package store

import (
	"go.uber.org/zap"

	"github.com/proofpanel/docvault/internal/engine"
	"github.com/proofpanel/docvault/internal/hostdoc"
	"github.com/proofpanel/docvault/pkg/sequencer"
)

// Store provides access to the vault repositories backed by one host
// document. All snapshot rewrites go through a single sequencer so the
// engine/snapshot pair is never mutated by two interleaved call chains.
type Store struct {
	adapter     *hostdoc.Adapter
	engine      *engine.Handle
	seq         *sequencer.Sequencer
	database    *DatabaseStore
	attachments *AttachmentStore
}

func NewStore(host hostdoc.Host) *Store {
	adapter := hostdoc.NewAdapter(host)
	eng := engine.New()

	log := zap.S().Named("database_store")
	seq := sequencer.New(func(err error) {
		log.Errorw("background snapshot save failed", "error", err)
	})

	database := NewDatabaseStore(adapter, eng, seq)
	return &Store{
		adapter:     adapter,
		engine:      eng,
		seq:         seq,
		database:    database,
		attachments: NewAttachmentStore(database, adapter),
	}
}

func (s *Store) Database() *DatabaseStore {
	return s.database
}

func (s *Store) Attachments() *AttachmentStore {
	return s.attachments
}

// Drain blocks until all queued background saves have executed.
func (s *Store) Drain() {
	s.seq.Drain()
}

// Close flushes queued saves and releases the engine.
func (s *Store) Close() error {
	s.seq.Close()
	return s.engine.Close()
}
