package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/vocabsheet/internal/ai"
	"github.com/example/vocabsheet/internal/batch"
	"github.com/example/vocabsheet/internal/config"
	"github.com/example/vocabsheet/internal/importer"
	"github.com/example/vocabsheet/internal/kvstore"
	"github.com/example/vocabsheet/internal/quiz"
	"github.com/example/vocabsheet/internal/scheduler"
	"github.com/example/vocabsheet/internal/srs"
	"github.com/example/vocabsheet/internal/store"
	"github.com/example/vocabsheet/pkg/models"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	command := "run"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	st, err := store.OpenExcel(cfg.SheetPath, cfg.SheetName)
	if err != nil {
		log.Fatalf("Failed to open vocabulary sheet: %v", err)
	}
	defer st.Close()

	switch command {
	case "run":
		runService(cfg, st)
	case "status":
		showStatus(cfg, st)
	case "refresh":
		refreshOnce(cfg, st)
	case "reset":
		resetCursor(cfg, st)
	case "import":
		if len(args) < 1 {
			log.Fatal("usage: vocabsheet import <file>")
		}
		runImport(st, args[0])
	case "due":
		showDue(st)
	case "review":
		runReview(st)
	case "quiz":
		runQuiz(cfg, st)
	default:
		log.Fatalf("Unknown command %q", command)
	}
}

// runService keeps the batch refresh running on a cadence until interrupted
func runService(cfg *config.Config, st store.RowStore) {
	pipeline, cleanup := openPipeline(cfg, st, true)
	defer cleanup()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if !cfg.AutoRefresh {
		log.Println("AUTO_REFRESH is disabled; nothing to do. Press Ctrl+C to stop.")
		<-sigChan
		return
	}

	sched := scheduler.New(pipeline, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	log.Printf("Batch refresh scheduled every %s. Press Ctrl+C to stop.", cfg.RefreshInterval)

	sig := <-sigChan
	log.Printf("Received signal: %v", sig)
	sched.Stop() // takes effect after the in-flight window finishes
	log.Println("Stopped")
}

func showStatus(cfg *config.Config, st store.RowStore) {
	pipeline, cleanup := openPipeline(cfg, st, false)
	defer cleanup()

	status, err := pipeline.Status()
	if err != nil {
		log.Fatalf("Failed to read status: %v", err)
	}
	if status.Complete {
		fmt.Printf("Refresh complete: %d/%d rows\n", status.LastProcessed, status.TotalRows)
		return
	}
	fmt.Printf("Refresh at %d/%d rows\n", status.LastProcessed, status.TotalRows)
}

func refreshOnce(cfg *config.Config, st store.RowStore) {
	pipeline, cleanup := openPipeline(cfg, st, true)
	defer cleanup()

	status, err := pipeline.ProcessNextWindow(context.Background())
	if err != nil {
		log.Fatalf("Batch window failed: %v", err)
	}
	fmt.Printf("Refresh at %d/%d rows (complete: %v)\n", status.LastProcessed, status.TotalRows, status.Complete)
}

func resetCursor(cfg *config.Config, st store.RowStore) {
	pipeline, cleanup := openPipeline(cfg, st, false)
	defer cleanup()

	if err := pipeline.Reset(); err != nil {
		log.Fatalf("Failed to reset cursor: %v", err)
	}
	fmt.Println("Cursor cleared; the next refresh starts from row 1")
}

func runImport(st store.RowStore, path string) {
	result, err := importer.Import(importer.DefaultConfig(path), st, time.Now())
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	fmt.Printf("Processed %d rows: %d created, %d skipped\n",
		result.TotalProcessed, result.Created, result.Skipped)
	for _, msg := range result.Errors {
		fmt.Println("  " + msg)
	}
}

func showDue(st store.RowStore) {
	review := srs.NewReview(st)
	due, err := review.Due(time.Now())
	if err != nil {
		log.Fatalf("Failed to query due words: %v", err)
	}
	if len(due) == 0 {
		fmt.Println("Nothing is due today")
		return
	}
	for _, rec := range due {
		fmt.Printf("row %d\t%s\t(streak %d, shown %d times)\n",
			rec.Row, rec.Word, rec.Review.ReviewCount, rec.Review.TotalReviews)
	}
}

// runReview walks the due words interactively and applies feedback
func runReview(st store.RowStore) {
	review := srs.NewReview(st)
	due, err := review.Due(time.Now())
	if err != nil {
		log.Fatalf("Failed to query due words: %v", err)
	}
	if len(due) == 0 {
		fmt.Println("Nothing is due today")
		return
	}

	scanner := bufio.NewScanner(os.Stdin)
	for _, rec := range due {
		fmt.Printf("\n=== %s ===\n", rec.Word)
		fmt.Print("Press Enter to show the answer...")
		if !scanner.Scan() {
			return
		}
		fmt.Println(rec.Translation)
		if rec.Definition != "" {
			fmt.Println(rec.Definition)
		}

		for {
			fmt.Print("again / hard / good / easy / <days>: ")
			if !scanner.Scan() {
				return
			}
			fb, ok := models.ParseFeedback(scanner.Text())
			if !ok {
				fmt.Println("Unknown feedback, try again")
				continue
			}
			res, err := review.ApplyFeedback(rec.Row, fb, time.Now())
			if err != nil {
				log.Printf("Failed to apply feedback: %v", err)
			} else if res.Days == 0 {
				fmt.Println("Due again today")
			} else {
				fmt.Printf("Next review in %d day(s)\n", res.Days)
			}
			break
		}
	}
}

// runQuiz asks usage-balanced multiple-choice questions and records results
func runQuiz(cfg *config.Config, st store.RowStore) {
	selector := quiz.New(st, nil)
	questions, err := selector.Questions(cfg.QuizQuestions)
	if errors.Is(err, quiz.ErrInsufficientPool) {
		fmt.Println("Not enough reviewed words for a quiz yet")
		return
	}
	if err != nil {
		log.Fatalf("Failed to build quiz: %v", err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	answers := make([]quiz.Answer, 0, len(questions))
	correct := 0

	for i, q := range questions {
		fmt.Printf("\nQuestion %d/%d:\n%s\n", i+1, len(questions), q.Prompt)
		for j, opt := range q.Options {
			fmt.Printf("  %d) %s\n", j+1, opt)
		}

		choice := -1
		for choice < 0 {
			fmt.Print("Your answer: ")
			if !scanner.Scan() {
				return
			}
			if n, err := strconv.Atoi(scanner.Text()); err == nil && n >= 1 && n <= len(q.Options) {
				choice = n - 1
			} else {
				fmt.Printf("Enter a number between 1 and %d\n", len(q.Options))
			}
		}

		ok := choice == q.CorrectIndex
		if ok {
			correct++
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Wrong, it was: %s\n", q.Options[q.CorrectIndex])
		}
		answers = append(answers, quiz.Answer{Row: q.Row, Correct: ok})
	}

	if err := selector.ApplyResults(answers, time.Now()); err != nil {
		log.Printf("Failed to record quiz results: %v", err)
	}
	fmt.Printf("\nScore: %d/%d\n", correct, len(answers))
}

// openPipeline wires the batch pipeline with its durable cursor store.
// withEnricher is false for the read-only commands that never call the
// enrichment service, so they work without an API key.
func openPipeline(cfg *config.Config, st store.RowStore, withEnricher bool) (*batch.Pipeline, func()) {
	kv, err := kvstore.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to open state database: %v", err)
	}

	var enricher batch.Enricher
	if withEnricher {
		client, err := ai.New(ai.Config{
			APIKey:      cfg.APIKey,
			APIURL:      cfg.APIURL,
			Model:       cfg.Model,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		})
		if err != nil {
			kv.Close()
			log.Fatalf("Failed to create enrichment client: %v", err)
		}
		enricher = client
	}

	return batch.New(st, enricher, kv, cfg.BatchSize), func() { kv.Close() }
}
