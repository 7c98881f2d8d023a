package words

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/madras-lab/motsmawon/apps/go-server/internal/db"
	"github.com/madras-lab/motsmawon/apps/go-server/internal/dictionary"
)

func TestInitLoadsEmbeddedDictionary(t *testing.T) {
	t.Setenv("WORDS_DICT_FILE", "")
	if err := Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	if Stats() == 0 {
		t.Fatal("embedded dictionary is empty")
	}
	got, err := Default().Sample(context.Background(), 10)
	if err != nil || len(got) != 10 {
		t.Fatalf("sample: %v %v", got, err)
	}
}

func TestMemorySourceSample(t *testing.T) {
	src := NewMemorySource([]string{"kay", "pen", "siwo", "dlo"})

	all, _ := src.Sample(context.Background(), 10)
	sort.Strings(all)
	if len(all) != 4 || all[0] != "dlo" || all[3] != "siwo" {
		t.Fatalf("oversized sample should return every word once: %v", all)
	}

	two, _ := src.Sample(context.Background(), 2)
	if len(two) != 2 || two[0] == two[1] {
		t.Fatalf("unexpected sample %v", two)
	}

	empty, err := NewMemorySource(nil).Sample(context.Background(), 5)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty source: %v %v", empty, err)
	}
}

func TestSQLSourceSample(t *testing.T) {
	conn, err := db.OpenMigrated(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer conn.Close()

	im := dictionary.NewImporter(conn)
	im.ImportEntries(context.Background(), []dictionary.Entry{
		{Mot: "kay", Definitions: []dictionary.Definition{{Traduction: "maison"}, {Traduction: "case", SensNum: 2}}},
		{Mot: "pen", Definitions: []dictionary.Definition{{Traduction: "pain"}}},
	})

	got, err := NewSQLSource(conn).Sample(context.Background(), 10)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "kay" || got[1] != "pen" {
		t.Fatalf("expected distinct creole words [kay pen], got %v", got)
	}
}

func TestSampleSeeded(t *testing.T) {
	src := NewMemorySource([]string{"kay", "pen", "siwo", "dlo", "bato", "lari"})
	a := src.SampleSeeded(rand.New(rand.NewSource(5)), 3)
	b := src.SampleSeeded(rand.New(rand.NewSource(5)), 3)
	if len(a) != 3 {
		t.Fatalf("expected 3 words, got %v", a)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave %v and %v", a, b)
		}
	}
}

type failingSource struct{}

func (failingSource) Sample(context.Context, int) ([]string, error) {
	return nil, errors.New("down")
}

func TestWithFallback(t *testing.T) {
	backup := NewMemorySource([]string{"kay"})

	got, err := WithFallback(failingSource{}, backup).Sample(context.Background(), 3)
	if err != nil || len(got) != 1 || got[0] != "kay" {
		t.Fatalf("failing primary: %v %v", got, err)
	}

	got, err = WithFallback(NewMemorySource(nil), backup).Sample(context.Background(), 3)
	if err != nil || len(got) != 1 {
		t.Fatalf("empty primary: %v %v", got, err)
	}

	got, _ = WithFallback(NewMemorySource([]string{"pen"}), backup).Sample(context.Background(), 3)
	if len(got) != 1 || got[0] != "pen" {
		t.Fatalf("primary ignored: %v", got)
	}
}
