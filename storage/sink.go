package storage

import (
	"candreg/candidate"
	"candreg/config"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Sink is a document store that accepts one candidate document at a time.
type Sink interface {
	Open(ctx context.Context) (Session, error)
}

// Session is one open connection to a Sink. InsertOne returns the identifier
// the store generated for the new document.
type Session interface {
	InsertOne(ctx context.Context, record candidate.Record) (string, error)
	ListCandidates(ctx context.Context) ([]StoredCandidate, error)
	Close(ctx context.Context) error
}

// StoredCandidate is a document read back from a sink with its generated id.
type StoredCandidate struct {
	ID     string
	Record candidate.Record
}

// ListStored opens a session, reads every stored candidate in insertion order
// and closes the session.
func ListStored(ctx context.Context, sink Sink) (stored []StoredCandidate, err error) {
	session, err := sink.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open sink session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
			err = fmt.Errorf("close sink session: %w", closeErr)
		}
	}()

	return session.ListCandidates(ctx)
}

// NewSink returns the sink implementation selected by cfg.Driver.
func NewSink(cfg config.SinkConfig) (Sink, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		return NewMongoSink(cfg), nil
	case config.DriverSQLite:
		return NewSQLiteSink(cfg), nil
	case config.DriverPostgres:
		return NewPostgresSink(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported sink driver: %s", cfg.Driver)
	}
}

// Writer sends already parsed candidates to a sink. It deliberately has no
// Parse method and cannot stand in for a parser.
type Writer struct {
	sink   Sink
	out    io.Writer
	logger *slog.Logger
}

func NewWriter(sink Sink, out io.Writer, logger *slog.Logger) *Writer {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{sink: sink, out: out, logger: logger}
}

// WriteCandidates opens one session, inserts every record as its own document
// in order and closes the session. The generated id of each document is
// printed. The first failed insert aborts the write; ids of the documents
// inserted before it are returned with the error.
func (w *Writer) WriteCandidates(ctx context.Context, records []candidate.Record) (ids []string, err error) {
	fmt.Fprintln(w.out, "Sending data to database:")

	session, err := w.sink.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open sink session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
			w.logger.Error("closing sink session failed", "error", closeErr)
			if err == nil {
				err = fmt.Errorf("close sink session: %w", closeErr)
			}
		}
	}()

	ids = make([]string, 0, len(records))
	for i, record := range records {
		id, insertErr := session.InsertOne(ctx, record)
		if insertErr != nil {
			return ids, fmt.Errorf("insert candidate %d of %d: %w", i+1, len(records), insertErr)
		}
		ids = append(ids, id)
		fmt.Fprintf(w.out, "%s  Remember this as your id\n", id)
	}

	w.logger.Debug("candidates written", "documents", len(ids))
	return ids, nil
}
