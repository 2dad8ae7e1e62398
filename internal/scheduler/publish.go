package scheduler

import (
	"context"
	"fmt"

	"levsim/internal/study"
)

// StudyRunner runs one study.
type StudyRunner interface {
	Run(ctx context.Context, s study.Study) (*study.Result, error)
}

// ResultPublisher delivers a finished study somewhere.
type ResultPublisher interface {
	Publish(ctx context.Context, res *study.Result) error
}

// PublishJob runs a study and publishes the result.
type PublishJob struct {
	Study     study.Study
	Spec      string
	Runner    StudyRunner
	Publisher ResultPublisher
}

func (j *PublishJob) Name() string     { return "publish:" + j.Study.Name }
func (j *PublishJob) Schedule() string { return j.Spec }

func (j *PublishJob) Run(ctx context.Context) error {
	res, err := j.Runner.Run(ctx, j.Study)
	if err != nil {
		return err
	}
	if err := j.Publisher.Publish(ctx, res); err != nil {
		return fmt.Errorf("publish %s: %w", j.Study.Name, err)
	}
	return nil
}
