package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/slabfit/go-slabfit/param"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFitSessionLifecycle(t *testing.T) {
	s := openTestStore(t)

	sess, err := s.Begin("oxide film", KindFit, 42)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if sess.ID == "" {
		t.Fatal("session ID is empty")
	}

	if err := s.FinishFit(sess.ID, 123.5, 200, 9000, true); err != nil {
		t.Fatalf("FinishFit: %v", err)
	}

	got, err := s.Session(sess.ID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if got.Name != "oxide film" || got.Kind != KindFit || got.Seed != 42 {
		t.Errorf("metadata = %q/%q/%d, want oxide film/fit/42", got.Name, got.Kind, got.Seed)
	}
	if got.Cost != 123.5 || got.Generations != 200 || got.Evaluations != 9000 || !got.Converged {
		t.Errorf("outcome = %+v", got)
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt not set")
	}
}

func TestParameterSnapshot(t *testing.T) {
	s := openTestStore(t)
	sess, err := s.Begin("snapshot", KindFit, 1)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	params := []*param.Parameter{
		param.MustVarying("oxide thickness", 15, 5, 30),
		param.New("si sld", 2.07),
	}
	if err := s.SaveParameters(sess.ID, params); err != nil {
		t.Fatalf("SaveParameters: %v", err)
	}

	// A second save replaces the first.
	params[0].Value = 17.3
	if err := s.SaveParameters(sess.ID, params); err != nil {
		t.Fatalf("SaveParameters (replace): %v", err)
	}

	got, err := s.Parameters(sess.ID)
	if err != nil {
		t.Fatalf("Parameters: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Name != "oxide thickness" || got[0].Value != 17.3 || !got[0].Vary {
		t.Errorf("record 0 = %+v", got[0])
	}
	if got[0].Low != 5 || got[0].High != 30 {
		t.Errorf("record 0 bounds = [%g, %g], want [5, 30]", got[0].Low, got[0].High)
	}
	if got[1].Name != "si sld" || got[1].Vary {
		t.Errorf("record 1 = %+v", got[1])
	}
}

func TestChainAppendAndRead(t *testing.T) {
	s := openTestStore(t)
	sess, err := s.Begin("chain", KindSample, 7)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	first := [][]float64{{1, 2}, {3, 4}}
	second := [][]float64{{5, 6}}
	if err := s.AppendChain(sess.ID, first); err != nil {
		t.Fatalf("AppendChain: %v", err)
	}
	if err := s.AppendChain(sess.ID, second); err != nil {
		t.Fatalf("AppendChain (second): %v", err)
	}

	chain, err := s.Chain(sess.ID)
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("got %d samples, want 3", len(chain))
	}
	want := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	for i := range want {
		for j := range want[i] {
			if chain[i][j] != want[i][j] {
				t.Errorf("chain[%d][%d] = %g, want %g", i, j, chain[i][j], want[i][j])
			}
		}
	}

	if err := s.FinishSample(sess.ID, 0.31, 3); err != nil {
		t.Fatalf("FinishSample: %v", err)
	}
	got, err := s.Session(sess.ID)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	if got.Acceptance != 0.31 || got.Samples != 3 {
		t.Errorf("sampling outcome = %+v", got)
	}
}

func TestSessionsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.Begin(name, KindFit, 0); err != nil {
			t.Fatalf("Begin %s: %v", name, err)
		}
	}
	sessions, err := s.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
}

func TestMissingSession(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Session("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Session: err = %v, want ErrNotFound", err)
	}
	if err := s.FinishFit("no-such-id", 0, 0, 0, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("FinishFit: err = %v, want ErrNotFound", err)
	}
}
