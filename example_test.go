package refrain_test

import (
	"context"
	"fmt"
	"math"

	"github.com/tonndorf/refrain"
	"github.com/tonndorf/refrain/rules"
)

type song struct {
	Title string
	Tempo float64 // beats per minute
}

func tempoDistance(a, b song) (float64, error) {
	return math.Min(math.Abs(a.Tempo-b.Tempo)/200, 1), nil
}

func Example() {
	ctx := context.Background()

	engine, err := refrain.New(tempoDistance)
	if err != nil {
		panic(err)
	}

	seed := engine.Add(song{Title: "Paranoid Android", Tempo: 82})
	engine.Add(song{Title: "Karma Police", Tempo: 75})
	engine.Add(song{Title: "Idioteque", Tempo: 139})
	engine.Add(song{Title: "Pyramid Song", Tempo: 77})

	if err := engine.Rebuild(ctx); err != nil {
		panic(err)
	}

	recs, err := engine.Recommend(ctx, seed, 2)
	if err != nil {
		panic(err)
	}
	for _, id := range recs {
		s, _ := engine.Payload(id)
		fmt.Println(s.Title)
	}
	// Output:
	// Pyramid Song
	// Karma Police
}

func Example_rules() {
	ctx := context.Background()

	ix := rules.NewIndex()
	engine, err := refrain.New(tempoDistance, refrain.WithRuleIndex(ix))
	if err != nil {
		panic(err)
	}

	var ids []refrain.SongID
	for _, s := range []song{
		{Title: "Everything in Its Right Place", Tempo: 125},
		{Title: "Airbag", Tempo: 85},
		{Title: "Lucky", Tempo: 90},
		{Title: "Let Down", Tempo: 100},
		{Title: "Reckoner", Tempo: 105},
		{Title: "Nude", Tempo: 110},
	} {
		ids = append(ids, engine.Add(s))
	}
	if err := engine.Rebuild(ctx); err != nil {
		panic(err)
	}

	// Listeners who play the first song tend to play the last one too.
	err = ix.Insert(rules.Rule{
		Left:    rules.Set(ids[0]),
		Right:   rules.Set(ids[5]),
		Support: 4,
		Rating:  0.8,
	})
	if err != nil {
		panic(err)
	}

	recs, err := engine.Recommend(ctx, ids[0], 5)
	if err != nil {
		panic(err)
	}
	for _, id := range recs {
		s, _ := engine.Payload(id)
		fmt.Println(s.Title)
	}
	// Output:
	// Nude
	// Reckoner
	// Let Down
	// Lucky
	// Airbag
}
