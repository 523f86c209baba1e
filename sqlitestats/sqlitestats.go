// Package sqlitestats implements an sqliteh.Tracer for collecting
// debug statistics.
package sqlitestats

import (
	"expvar"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/sqltyped/sqlite/sqliteh"
)

// Stats tracks and reports connection stats.
//
// Stats implements sqliteh.Tracer and http.Handler.
type Stats struct {
	// Queries counts statement executions; QueryErrs the subset
	// that failed. Published under expvar by New.
	Queries   expvar.Int
	QueryErrs expvar.Int
	Txs       expvar.Int
	TxErrs    expvar.Int

	curTxs sync.Map // sqliteh.TraceConnID -> *txStats
}

// New returns a Stats publishing its counters under
// "sqlite-<name>-*" expvar keys.
func New(name string) *Stats {
	s := new(Stats)
	expvar.Publish("sqlite-"+name+"-queries", &s.Queries)
	expvar.Publish("sqlite-"+name+"-query-errs", &s.QueryErrs)
	expvar.Publish("sqlite-"+name+"-txs", &s.Txs)
	expvar.Publish("sqlite-"+name+"-tx-errs", &s.TxErrs)
	return s
}

func (s *Stats) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var txs []*txStats
	s.curTxs.Range(func(_, value any) bool {
		txs = append(txs, value.(*txStats))
		return true
	})
	sort.Slice(txs, func(i, j int) bool { return txs[i].start.Before(txs[j].start) })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(200)
	io.WriteString(w, "<html><head><title>sqlite active transactions</title></head><body><pre>\n")
	fmt.Fprintf(w, "sqlite active transactions (%d):", len(txs))
	now := time.Now()
	for _, tx := range txs {
		ro := ""
		if tx.readOnly {
			ro = "read-only"
		}
		fmt.Fprintf(w, "\n\t%v\t%v\t%s", tx.id, now.Sub(tx.start).Round(time.Millisecond), ro)
	}
	io.WriteString(w, "\n</pre></body></html>")
}

func (s *Stats) Query(id sqliteh.TraceConnID, query string, duration time.Duration, err error) {
	s.Queries.Add(1)
	if err != nil {
		s.QueryErrs.Add(1)
	}
}

func (s *Stats) BeginTx(id sqliteh.TraceConnID, readOnly bool, err error) {
	s.Txs.Add(1)
	if err != nil {
		// Not actually in tx.
		s.TxErrs.Add(1)
		return
	}
	s.curTxs.Store(id, &txStats{
		id:       id,
		start:    time.Now(),
		readOnly: readOnly,
	})
}

func (s *Stats) Commit(id sqliteh.TraceConnID, err error) {
	s.txEnd(id, err)
}

func (s *Stats) Rollback(id sqliteh.TraceConnID, err error) {
	s.txEnd(id, err)
}

func (s *Stats) txEnd(id sqliteh.TraceConnID, err error) {
	s.curTxs.LoadAndDelete(id)
	if err != nil {
		s.TxErrs.Add(1)
	}
}

type txStats struct {
	id       sqliteh.TraceConnID
	start    time.Time
	readOnly bool
}
