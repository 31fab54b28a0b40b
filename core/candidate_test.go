package core

import (
	"testing"
	"time"

	"github.com/rushteam/feedkit/pkg/utils"
)

func newTestCandidate(id, author, src string, score float64, createdAt time.Time) *Candidate {
	c := NewCandidate(&Post{ID: id, AuthorID: author, CreatedAt: createdAt}, src)
	c.Score = score
	return c
}

func TestLess(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b *Candidate
		want bool
	}{
		{
			name: "higher score wins",
			a:    newTestCandidate("a", "u1", SourceInNetwork, 2.0, t0),
			b:    newTestCandidate("b", "u2", SourceInNetwork, 1.0, t0),
			want: true,
		},
		{
			name: "score tie breaks on source priority",
			a:    newTestCandidate("a", "u1", SourceInNetwork, 1.0, t0),
			b:    newTestCandidate("b", "u2", SourceOutOfNetwork, 1.0, t0),
			want: true,
		},
		{
			name: "source tie breaks on newer post",
			a:    newTestCandidate("a", "u1", SourceInNetwork, 1.0, t0.Add(time.Minute)),
			b:    newTestCandidate("b", "u2", SourceInNetwork, 1.0, t0),
			want: true,
		},
		{
			name: "full tie breaks on post id",
			a:    newTestCandidate("a", "u1", SourceInNetwork, 1.0, t0),
			b:    newTestCandidate("b", "u2", SourceInNetwork, 1.0, t0),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Less(tt.a, tt.b); got != tt.want {
				t.Errorf("Less() = %v, want %v", got, tt.want)
			}
			// 反向必须相反，比较器才是全序
			if got := Less(tt.b, tt.a); got == tt.want {
				t.Errorf("Less() not antisymmetric for %s", tt.name)
			}
		})
	}
}

func TestSortByScoreDeterministic(t *testing.T) {
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	build := func() []*Candidate {
		return []*Candidate{
			newTestCandidate("c", "u3", SourceExternal, 1.0, t0),
			newTestCandidate("a", "u1", SourceInNetwork, 1.0, t0),
			newTestCandidate("b", "u2", SourceOutOfNetwork, 1.0, t0),
			newTestCandidate("d", "u4", SourceInNetwork, 3.0, t0),
		}
	}

	first := build()
	SortByScore(first)
	for i := 0; i < 10; i++ {
		again := build()
		SortByScore(again)
		for j := range first {
			if first[j].Post.ID != again[j].Post.ID {
				t.Fatalf("sort not deterministic at %d: %s vs %s", j, first[j].Post.ID, again[j].Post.ID)
			}
		}
	}

	wantOrder := []string{"d", "a", "b", "c"}
	for i, id := range wantOrder {
		if first[i].Post.ID != id {
			t.Errorf("position %d = %s, want %s", i, first[i].Post.ID, id)
		}
	}
}

func TestDedup(t *testing.T) {
	t0 := time.Now()
	a := newTestCandidate("p1", "u1", SourceInNetwork, 0, t0)
	a.PutLabel("candidate_source", utils.Label{Value: "source.in_network", Source: "source"})
	dup := newTestCandidate("p1", "u1", SourceOutOfNetwork, 0, t0)
	dup.PutLabel("candidate_source", utils.Label{Value: "source.out_of_network", Source: "source"})
	b := newTestCandidate("p2", "u2", SourceOutOfNetwork, 0, t0)

	out := Dedup([]*Candidate{a, dup, b, nil})
	if len(out) != 2 {
		t.Fatalf("Dedup returned %d candidates, want 2", len(out))
	}
	if out[0].Post.ID != "p1" || out[1].Post.ID != "p2" {
		t.Errorf("unexpected order: %s, %s", out[0].Post.ID, out[1].Post.ID)
	}
	// 首次出现者保留来源，重复者 label 合并进来
	if out[0].Source != SourceInNetwork {
		t.Errorf("kept candidate source = %s, want in_network", out[0].Source)
	}
	lbl := out[0].Labels["candidate_source"]
	if lbl.Value != "source.in_network|source.out_of_network" {
		t.Errorf("merged label = %q", lbl.Value)
	}
}
