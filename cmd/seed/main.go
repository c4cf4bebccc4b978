// Command seed validates a catalog file and walks a demo session through it
// against the in-memory store, printing the resulting report. Useful for
// checking a catalog before deploying it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KingBbwe/lta/internal/catalog"
	"github.com/KingBbwe/lta/internal/model"
	"github.com/KingBbwe/lta/internal/repository"
	"github.com/KingBbwe/lta/internal/service"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	catalogPath := flag.String("catalog", "", "catalog JSON path (empty = embedded default)")
	walk := flag.Bool("walk", false, "walk a demo session through the catalog")
	flag.Parse()

	var cat *catalog.Catalog
	var err error
	if *catalogPath != "" {
		cat, err = catalog.LoadFile(*catalogPath)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		log.Fatal().Err(err).Msg("catalog is invalid")
	}

	log.Info().
		Str("version", cat.Version).
		Int("questions", cat.Len()).
		Int("sections", len(cat.Sections())).
		Msg("catalog is valid")

	if !*walk {
		return
	}

	ctx := context.Background()
	svc := service.NewSessionService(cat, repository.NewMemoryStore(), nil, nil)
	controller, err := svc.StartSession(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start demo session")
	}

	// Answer every question with its first option (or a canned answer) and
	// follow the skip logic until end-of-flow.
	for q := controller.CurrentQuestion(); q != nil; {
		payload := demoAnswer(q)
		next, err := controller.Advance(ctx, q.ID, payload)
		if err != nil {
			log.Fatal().Err(err).Str("question", q.ID).Msg("advance failed")
		}
		log.Info().Str("question", q.ID).Str("answer", payload.Primary()).Msg("answered")
		q = next
	}

	report, err := controller.Complete(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("complete failed")
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	os.Stdout.Write(out)
	os.Stdout.Write([]byte("\n"))
}

func demoAnswer(q *model.Question) model.ResponsePayload {
	switch q.Type {
	case model.QuestionTypeFreeText:
		return model.ResponsePayload{Text: "This is a demo answer with enough words to score"}
	case model.QuestionTypeScale:
		return model.ResponsePayload{Value: "8"}
	case model.QuestionTypeMultipleSelect:
		if len(q.Options) > 0 {
			return model.ResponsePayload{Values: q.Options[:1]}
		}
	case model.QuestionTypeRanking:
		return model.ResponsePayload{Ranking: q.Options}
	case model.QuestionTypeMatrix:
		m := make(map[string]string, len(q.Rows))
		for _, row := range q.Rows {
			if len(q.Columns) > 0 {
				m[row] = q.Columns[len(q.Columns)-1]
			}
		}
		return model.ResponsePayload{Matrix: m}
	}
	if len(q.Options) > 0 {
		return model.ResponsePayload{Value: q.Options[0]}
	}
	return model.ResponsePayload{Text: "n/a"}
}
