package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/proofpanel/docvault/internal/engine"
	"github.com/proofpanel/docvault/internal/hostdoc"
	"github.com/proofpanel/docvault/internal/models"
	srvErrors "github.com/proofpanel/docvault/pkg/errors"
	"github.com/proofpanel/docvault/pkg/sequencer"
	"github.com/proofpanel/docvault/pkg/xmlcodec"
)

// DatabaseStore owns the embedded engine and the snapshot part holding its
// serialized image. The engine hydrates lazily on first use; every mutation
// rewrites the whole snapshot.
type DatabaseStore struct {
	adapter *hostdoc.Adapter
	engine  *engine.Handle
	seq     *sequencer.Sequencer
	log     *zap.SugaredLogger

	// mu serializes the load/execute/save cycle across request goroutines;
	// snapshot part rewrites additionally serialize behind seq.
	mu          sync.Mutex
	initialized bool
}

func NewDatabaseStore(adapter *hostdoc.Adapter, eng *engine.Handle, seq *sequencer.Sequencer) *DatabaseStore {
	return &DatabaseStore{
		adapter: adapter,
		engine:  eng,
		seq:     seq,
		log:     zap.S().Named("database_store"),
	}
}

// LoadOrCreate hydrates the engine from the snapshot part, or creates and
// immediately persists an empty database when no usable snapshot exists. The
// first call does the work; later calls return without touching the host.
func (s *DatabaseStore) LoadOrCreate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadOrCreate(ctx)
}

func (s *DatabaseStore) loadOrCreate(ctx context.Context) error {
	if s.initialized {
		return nil
	}

	part, found, err := s.adapter.FindPartByTagPrefix(ctx, SnapshotTag)
	if err != nil {
		return err
	}
	if found {
		loadErr := s.loadSnapshot(ctx, part.XML())
		if loadErr == nil {
			s.initialized = true
			return nil
		}
		// self-heal: an unreadable snapshot becomes a fresh empty database
		s.log.Warnw("snapshot is unreadable, recreating empty database", "error", loadErr)
	}

	if err := s.engine.CreateEmpty(ctx); err != nil {
		return err
	}
	s.initialized = true
	return s.save(ctx)
}

func (s *DatabaseStore) loadSnapshot(ctx context.Context, xmlText string) error {
	body, ok := xmlcodec.ExtractBody(xmlText, SnapshotTag)
	if !ok {
		return srvErrors.NewCorruptSnapshotError("no extractable snapshot body")
	}

	err := s.loadImage(ctx, body)
	if err == nil {
		return nil
	}

	// historical writers stored the whole fragment base64-encoded one extra
	// time; the body then decodes to markup instead of a database image
	salvaged, ok := xmlcodec.TrySalvageDoubleEncoded(body)
	if !ok {
		return err
	}
	inner, ok := xmlcodec.ExtractBody(salvaged, SnapshotTag)
	if !ok {
		return err
	}
	return s.loadImage(ctx, inner)
}

func (s *DatabaseStore) loadImage(ctx context.Context, base64Body string) error {
	image, err := xmlcodec.FromBase64(base64Body)
	if err != nil {
		return srvErrors.NewCorruptSnapshotError(err.Error())
	}
	return s.engine.LoadFromBytes(ctx, image)
}

// Save exports the engine and atomically replaces the snapshot part. The
// write is sequenced behind any queued background saves so rewrites never
// interleave. Fails with DatabaseUninitialized before any load or create.
func (s *DatabaseStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx)
}

func (s *DatabaseStore) save(ctx context.Context) error {
	if !s.initialized {
		return srvErrors.NewDatabaseUninitializedError()
	}

	future := s.seq.Enqueue(func(ctx context.Context) (any, error) {
		return nil, s.doSave(ctx)
	})
	res := <-future.C()
	return res.Err
}

// doSave runs on the sequencer goroutine. It deliberately ignores the
// submission context: a save queued before shutdown must still be written out
// while the queue flushes.
func (s *DatabaseStore) doSave(context.Context) error {
	ctx := context.Background()

	image, err := s.engine.Export(ctx)
	if err != nil {
		return err
	}
	fragment := xmlcodec.WrapFragment(SnapshotTag, nil, xmlcodec.ToBase64(image))
	return s.adapter.ReplacePart(ctx, SnapshotTag, fragment)
}

// Execute runs sqlText and decides persistence from its classification: a
// read-only statement returns its rows with no save, a mutating statement
// triggers a detached save whose failure is logged rather than surfaced, so
// the caller gets the result without waiting on persistence latency.
func (s *DatabaseStore) Execute(ctx context.Context, sqlText string) (*engine.ResultSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadOrCreate(ctx); err != nil {
		return nil, err
	}

	if IsReadOnlyStatement(sqlText) {
		return s.engine.Query(ctx, sqlText)
	}

	if err := s.engine.Run(ctx, sqlText); err != nil {
		return nil, err
	}
	s.seq.EnqueueDetached(func(ctx context.Context) (any, error) {
		return nil, s.doSave(ctx)
	})
	return &engine.ResultSet{}, nil
}

// SeedDatabase runs a seed script and persists the result synchronously.
func (s *DatabaseStore) SeedDatabase(ctx context.Context, sqlText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadOrCreate(ctx); err != nil {
		return err
	}
	if err := s.engine.Run(ctx, sqlText); err != nil {
		return err
	}
	return s.save(ctx)
}

// HasDatabase probes for the snapshot part without hydrating the engine.
func (s *DatabaseStore) HasDatabase(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasDatabase(ctx)
}

func (s *DatabaseStore) hasDatabase(ctx context.Context) (bool, error) {
	if s.initialized {
		return true, nil
	}
	_, found, err := s.adapter.FindPartByTagPrefix(ctx, SnapshotTag)
	if err != nil {
		return false, err
	}
	return found, nil
}

// DeleteDatabase removes the snapshot part and drops the in-memory engine.
// The store returns to its pre-load state; the next LoadOrCreate starts over.
func (s *DatabaseStore) DeleteDatabase(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.adapter.DeletePartByTagPrefix(ctx, SnapshotTag); err != nil {
		return err
	}
	if err := s.engine.Close(); err != nil {
		return err
	}
	s.initialized = false
	return nil
}

// RequiredTableState introspects the schema against a required table set.
// An absent database is reported as-is; this probe never creates one.
func (s *DatabaseStore) RequiredTableState(ctx context.Context, requiredTables []string) (*models.DatabaseState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &models.DatabaseState{}

	found, err := s.hasDatabase(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		state.MissingTables = append([]string(nil), requiredTables...)
		return state, nil
	}

	if err := s.loadOrCreate(ctx); err != nil {
		return nil, err
	}
	state.HasDatabase = true

	rs, err := s.engine.Query(ctx, queryListUserTables)
	if err != nil {
		return nil, err
	}

	present := make(map[string]string) // lower-cased name -> exact name
	for _, row := range rs.Values {
		name := asString(row[0])
		if name != "" {
			present[strings.ToLower(name)] = name
		}
	}

	for _, required := range requiredTables {
		if _, ok := present[strings.ToLower(required)]; !ok {
			state.MissingTables = append(state.MissingTables, required)
		}
	}

	for _, name := range present {
		probe := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s LIMIT 1)", quoteIdent(name))
		prs, err := s.engine.Query(ctx, probe)
		if err != nil {
			// a failed probe means "no data in that table", not a hard error
			s.log.Warnw("table probe failed", "table", name, "error", err)
			continue
		}
		if len(prs.Values) == 1 && asInt64(prs.Values[0][0]) == 1 {
			state.HasData = true
			break
		}
	}
	return state, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
