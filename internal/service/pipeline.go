package service

import (
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/umkm-health/internal/aggregator"
	"github.com/Dan9191/umkm-health/internal/features"
	"github.com/Dan9191/umkm-health/internal/models"
	"github.com/Dan9191/umkm-health/internal/repository"
	"github.com/Dan9191/umkm-health/internal/scaler"
)

// Artifact file names written by the pipeline and read by the API.
const (
	DatasetFile = "weekly_dataset.csv"
	ScalerFile  = "scaler_params.json"
	LabelsFile  = "label_classes.json"
)

// Pipeline builds the labelled training set and scaler from transaction logs
type Pipeline struct {
	repo *repository.Repository
	log  *logrus.Logger
}

// PipelineResult is the output of one pipeline run
type PipelineResult struct {
	Records      int
	Weeks        []models.LabelledWeek
	Scaler       *scaler.State
	Labels       []string
	Distribution map[models.HealthLabel]int
}

// NewPipeline initializes a new pipeline
func NewPipeline(repo *repository.Repository, log *logrus.Logger) *Pipeline {
	return &Pipeline{repo: repo, log: log}
}

// Build loads all logs, aggregates them weekly, labels every week and fits the scaler.
func (p *Pipeline) Build(inputs []string) (*PipelineResult, error) {
	records, err := p.repo.LoadTransactions(inputs)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("transaction logs contain no records")
	}

	weeks := features.LabelWeeks(aggregator.Weekly(records))
	vectors := make([]models.FeatureVector, len(weeks))
	for i, w := range weeks {
		vectors[i] = w.Features
	}
	sc, err := scaler.Fit(vectors)
	if err != nil {
		return nil, fmt.Errorf("failed to fit scaler: %w", err)
	}

	res := &PipelineResult{
		Records:      len(records),
		Weeks:        weeks,
		Scaler:       sc,
		Labels:       features.Classes(),
		Distribution: features.Distribution(weeks),
	}
	p.log.WithFields(logrus.Fields{"records": res.Records, "weeks": len(weeks)}).Info("Weekly dataset built")
	for _, label := range res.Labels {
		p.log.Infof("Label %q: %d weeks", label, res.Distribution[models.HealthLabel(label)])
	}
	return res, nil
}

// Run builds the dataset and writes it with the scaler params and label classes to outDir.
func (p *Pipeline) Run(inputs []string, outDir string) (*PipelineResult, error) {
	res, err := p.Build(inputs)
	if err != nil {
		return nil, err
	}
	if err := p.repo.SaveDataset(filepath.Join(outDir, DatasetFile), res.Weeks); err != nil {
		return nil, fmt.Errorf("failed to save dataset: %w", err)
	}
	if err := p.repo.SaveScaler(filepath.Join(outDir, ScalerFile), res.Scaler); err != nil {
		return nil, fmt.Errorf("failed to save scaler: %w", err)
	}
	if err := p.repo.SaveLabels(filepath.Join(outDir, LabelsFile), res.Labels); err != nil {
		return nil, fmt.Errorf("failed to save labels: %w", err)
	}
	p.log.Infof("Artifacts written to %s", outDir)
	return res, nil
}
