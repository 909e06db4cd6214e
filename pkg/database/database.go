// Package database holds the MongoDB connection behind the mongo storage backend.
// While the server is unreachable writes are kept in a coalescing queue and
// replayed once a background reconnect succeeds.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyModBot/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 5 * time.Second
	retryInterval  = 15 * time.Second
)

// pendingWrite is a write made while offline. A nil update means delete.
type pendingWrite struct {
	collection string
	query      bson.M
	update     interface{}
}

// Database owns the Mongo client and the offline write queue.
type Database struct {
	url  string
	name string

	mu          sync.RWMutex
	client      *mongo.Client
	db          *mongo.Database
	connected   bool
	collections map[string]*mongo.Collection
	retrying    bool

	// pending keeps only the newest write per document, replayed in first-seen order.
	queueMu sync.Mutex
	pending map[string]pendingWrite
	order   []string

	stop     chan struct{}
	stopOnce sync.Once
}

var (
	database *Database
	dbOnce   sync.Once
)

// Init connects the global database. On failure the returned Database is still
// usable: it queues writes and keeps retrying in the background.
func Init(ctx context.Context, mongoURL, dbName string) (*Database, error) {
	var err error
	dbOnce.Do(func() {
		database = NewDatabase()
		err = database.Connect(ctx, mongoURL, dbName)
	})
	return database, err
}

// Get returns the global database, nil unless the mongo backend is in use.
func Get() *Database {
	return database
}

// NewDatabase creates a disconnected Database.
func NewDatabase() *Database {
	return &Database{
		collections: make(map[string]*mongo.Collection),
		pending:     make(map[string]pendingWrite),
		stop:        make(chan struct{}),
	}
}

// Connect dials MongoDB and verifies the connection with a ping.
func (d *Database) Connect(ctx context.Context, mongoURL, dbName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return nil
	}
	d.url, d.name = mongoURL, dbName

	logger.System("Intentando conectar a la base de datos...", "DB")

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(connectTimeout))
	if err == nil {
		if err = client.Ping(ctx, readpref.Primary()); err != nil {
			_ = client.Disconnect(context.Background())
		}
	}
	if err != nil {
		logger.Critical(fmt.Sprintf("Fallo al conectar con la base de datos: %v", err), "DB")
		d.startRetry()
		return err
	}

	d.client = client
	d.db = client.Database(dbName)
	d.collections = make(map[string]*mongo.Collection)
	d.connected = true
	logger.Success("Conectado exitosamente a la base de datos.", "DB")

	go d.replay()
	return nil
}

// startRetry launches the reconnect loop once. Must be called with d.mu held.
func (d *Database) startRetry() {
	if d.retrying {
		return
	}
	d.retrying = true
	url, name := d.url, d.name

	go func() {
		ticker := time.NewTicker(retryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				logger.Info("Intentando reconectar a la base de datos...", "DB")
				if err := d.Connect(context.Background(), url, name); err == nil {
					d.mu.Lock()
					d.retrying = false
					d.mu.Unlock()
					return
				}
			case <-d.stop:
				return
			}
		}
	}()
}

// Connected reports whether the last connection attempt succeeded.
func (d *Database) Connected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

// Disconnect stops the reconnect loop and closes the client. Queued writes that
// never reached the server are reported and dropped.
func (d *Database) Disconnect() error {
	d.stopOnce.Do(func() { close(d.stop) })

	if n := d.PendingWrites(); n > 0 {
		logger.Warn(fmt.Sprintf("Se descartan %d escrituras pendientes al desconectar", n), "DB")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := d.client.Disconnect(ctx); err != nil {
		return err
	}
	d.client, d.db, d.connected = nil, nil, false
	logger.Warn("La base de datos ha sido desconectada", "DB")
	return nil
}

// Ping measures the round trip to the primary.
func (d *Database) Ping(ctx context.Context) (time.Duration, error) {
	d.mu.RLock()
	client := d.client
	d.mu.RUnlock()

	if client == nil {
		return 0, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx, readpref.Primary())
	return time.Since(start), err
}

// Status is a point-in-time view of the connection for status pages.
type Status struct {
	Online  bool          `json:"isOnline"`
	Latency time.Duration `json:"latency"`
	Pending int           `json:"pendingWrites"`
}

// Label renders the status the way /utils status shows it.
func (s Status) Label() string {
	if !s.Online {
		if s.Pending > 0 {
			return fmt.Sprintf("🔴 Offline (%d pending writes)", s.Pending)
		}
		return "🔴 Offline"
	}
	return fmt.Sprintf("🟢 Online (%dms)", s.Latency.Milliseconds())
}

// Status pings the server and reports the result with the queue length.
func (d *Database) Status(ctx context.Context) Status {
	latency, err := d.Ping(ctx)
	return Status{
		Online:  err == nil,
		Latency: latency,
		Pending: d.PendingWrites(),
	}
}

// GetCollection returns a cached collection handle, or nil while offline.
func (d *Database) GetCollection(name string) *mongo.Collection {
	d.mu.RLock()
	col, ok := d.collections[name]
	db := d.db
	d.mu.RUnlock()
	if ok {
		return col
	}
	if db == nil {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if col, ok := d.collections[name]; ok {
		return col
	}
	col = db.Collection(name)
	d.collections[name] = col
	return col
}

// enqueue records a write for replay, replacing any older write to the same document.
func (d *Database) enqueue(w pendingWrite) {
	key := cacheKey(w.collection, w.query)

	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	if _, exists := d.pending[key]; !exists {
		d.order = append(d.order, key)
	}
	d.pending[key] = w
}

// PendingWrites returns the number of documents with a queued write.
func (d *Database) PendingWrites() int {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	return len(d.pending)
}

// drain empties the queue and returns its writes in order.
func (d *Database) drain() []pendingWrite {
	d.queueMu.Lock()
	defer d.queueMu.Unlock()

	writes := make([]pendingWrite, 0, len(d.order))
	for _, key := range d.order {
		writes = append(writes, d.pending[key])
	}
	d.pending = make(map[string]pendingWrite)
	d.order = nil
	return writes
}

// replay pushes queued writes to the server. Failures go back on the queue
// unless a newer write for the same document arrived meanwhile.
func (d *Database) replay() {
	writes := d.drain()
	if len(writes) == 0 {
		return
	}
	logger.System(fmt.Sprintf("Sincronizando %d operaciones pendientes con la DB...", len(writes)), "DB-Sync")

	failed := 0
	for _, w := range writes {
		if err := d.apply(w); err != nil {
			failed++
			logger.Error(fmt.Sprintf("Error al sincronizar '%s': %v", w.collection, err), "DB-Sync")
			d.requeue(w)
		}
	}

	if failed > 0 {
		logger.Warn(fmt.Sprintf("%d operaciones no pudieron sincronizarse y se reintentarán.", failed), "DB-Sync")
		return
	}
	logger.Success("Sincronización completada exitosamente.", "DB-Sync")
}

func (d *Database) apply(w pendingWrite) error {
	col := d.GetCollection(w.collection)
	if col == nil {
		return ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if w.update == nil {
		_, err := col.DeleteOne(ctx, w.query)
		return err
	}
	_, err := col.UpdateOne(ctx, w.query, bson.M{"$set": w.update}, options.Update().SetUpsert(true))
	return err
}

func (d *Database) requeue(w pendingWrite) {
	key := cacheKey(w.collection, w.query)

	d.queueMu.Lock()
	defer d.queueMu.Unlock()
	if _, newer := d.pending[key]; newer {
		return
	}
	d.pending[key] = w
	d.order = append(d.order, key)
}
