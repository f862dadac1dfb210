// Command jobctl is the operator CLI for the render job queue. It enqueues
// new jobs and requeues failed ones without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/solutionspma/yocreator-sub001/internal/domain"
	"github.com/solutionspma/yocreator-sub001/internal/infra"
	"github.com/solutionspma/yocreator-sub001/internal/store"
)

func main() {
	var (
		typeFlag    string
		payloadFlag string
		requeueFlag string
	)

	flag.StringVar(&typeFlag, "type", "", "job type to enqueue (voice, avatar, video)")
	flag.StringVar(&payloadFlag, "payload", "", "job payload as raw JSON")
	flag.StringVar(&requeueFlag, "requeue", "", "job ID to move back to queued, clearing its error")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "jobctl").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, cleanup, err := newJobStore(ctx, cfg, logger)
	if err != nil {
		exitWithError(err)
	}
	defer cleanup()

	switch {
	case requeueFlag != "":
		if err := requeue(ctx, st, strings.TrimSpace(requeueFlag)); err != nil {
			exitWithError(err)
		}
	case typeFlag != "":
		if err := enqueue(ctx, st, typeFlag, payloadFlag); err != nil {
			exitWithError(err)
		}
	default:
		exitWithError(errors.New("either -type with -payload, or -requeue, must be provided"))
	}
}

func enqueue(ctx context.Context, st store.Store, rawType, rawPayload string) error {
	jobType := domain.JobType(strings.TrimSpace(strings.ToLower(rawType)))
	if !jobType.Valid() {
		return fmt.Errorf("unsupported job type %q", rawType)
	}
	if strings.TrimSpace(rawPayload) == "" {
		return errors.New("-payload is required")
	}
	if !json.Valid([]byte(rawPayload)) {
		return errors.New("-payload must be valid JSON")
	}

	now := time.Now().UTC()
	job := &domain.Job{
		ID:        uuid.NewString(),
		Type:      jobType,
		Status:    domain.JobStatusQueued,
		Payload:   json.RawMessage(rawPayload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.Create(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}
	fmt.Printf("Queued %s job %s\n", job.Type, job.ID)
	return nil
}

func requeue(ctx context.Context, st store.Store, jobID string) error {
	job, err := st.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job: %w", err)
	}
	if job.Status == domain.JobStatusProcessing {
		return fmt.Errorf("job %s is processing; refusing to requeue a live job", jobID)
	}

	queued := domain.JobStatusQueued
	zero := 0
	empty := ""
	patch := store.Patch{Status: &queued, Progress: &zero, OutputURL: &empty, Error: &empty}
	if err := st.Patch(ctx, jobID, patch); err != nil {
		return fmt.Errorf("failed to requeue job: %w", err)
	}
	fmt.Printf("Job %s (%s) moved back to queued\n", job.ID, job.Type)
	return nil
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "jobctl: %v\n", err)
	os.Exit(1)
}
