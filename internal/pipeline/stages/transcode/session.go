package transcode

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/cardpress/cardpress/internal/collection"
	"github.com/cardpress/cardpress/internal/policy"
)

// Status is the terminal state of one asset session.
type Status string

// Session outcomes.
const (
	// StatusCommitted means the candidate replaced the original.
	StatusCommitted Status = "committed"
	// StatusDiscarded means the candidate was not smaller and was removed.
	StatusDiscarded Status = "discarded"
	// StatusFailed means the session aborted; the original is untouched.
	StatusFailed Status = "failed"
)

// Outcome describes how one asset session ended.
type Outcome struct {
	Status        Status
	OriginalBytes int64
	FinalBytes    int64
	// Converted is true when a committed candidate changed container.
	Converted bool
	// NewName is the asset filename after a committed conversion.
	NewName string
	Err     error
}

// session processes one asset from backup through commit or discard.
// The candidate file never outlives the session: it is either renamed over
// the original on commit or removed on discard and failure.
type session struct {
	stage *Stage
	asset collection.Asset
	mode  policy.Mode

	candidatePath string
}

func newSession(stage *Stage, asset collection.Asset, mode policy.Mode) *session {
	return &session{stage: stage, asset: asset, mode: mode}
}

// run executes the full session. Errors are returned inside the Outcome so
// one bad asset never stops the batch.
func (s *session) run(ctx context.Context) Outcome {
	outcome, err := s.process(ctx)
	if err != nil {
		s.removeCandidate()
		return Outcome{Status: StatusFailed, OriginalBytes: s.asset.Size, Err: err}
	}
	return outcome
}

func (s *session) process(ctx context.Context) (Outcome, error) {
	source, ok := s.asset.Container()
	if !ok {
		return Outcome{}, fmt.Errorf("unrecognized container for %s", s.asset.Filename())
	}

	// The original bytes must be preserved before anything can mutate them.
	if _, err := s.stage.ledger.Ensure(ctx, s.asset.Path); err != nil {
		return Outcome{}, err
	}

	img, _, err := s.stage.codec.Decode(s.asset.Path)
	if err != nil {
		return Outcome{}, err
	}

	hasAlpha := policy.HasTransparency(img)
	plan := policy.Plan(s.mode, source, hasAlpha, s.stage.opts)

	img = s.fit(img, plan)

	if err := s.encodeCandidate(img, plan); err != nil {
		return Outcome{}, err
	}

	info, err := os.Stat(s.candidatePath)
	if err != nil {
		return Outcome{}, fmt.Errorf("inspecting candidate: %w", err)
	}

	// Strictly smaller or the original stays. Equal size is a discard.
	if info.Size() >= s.asset.Size {
		s.removeCandidate()
		return Outcome{
			Status:        StatusDiscarded,
			OriginalBytes: s.asset.Size,
			FinalBytes:    s.asset.Size,
		}, nil
	}

	return s.commit(plan, source, info.Size())
}

// fit scales img down to the plan's bound. Images already inside the bound
// are never touched, and nothing is ever upscaled.
func (s *session) fit(img image.Image, plan policy.EncodePlan) image.Image {
	b := img.Bounds()
	w, h := policy.FitWithin(b.Dx(), b.Dy(), plan.MaxWidth, plan.MaxHeight)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return s.stage.codec.Resize(img, w, h)
}

func (s *session) encodeCandidate(img image.Image, plan policy.EncodePlan) error {
	name := collection.TempPrefix + s.asset.Name() + "." + plan.Container.Ext()
	s.candidatePath = filepath.Join(filepath.Dir(s.asset.Path), name)
	return s.stage.codec.EncodeFile(img, s.candidatePath, plan.Container, plan.Quality)
}

// commit replaces the original with the smaller candidate. A container
// change removes the original file and records the rename for reference
// rewriting.
func (s *session) commit(plan policy.EncodePlan, source policy.Container, candidateBytes int64) (Outcome, error) {
	outcome := Outcome{
		Status:        StatusCommitted,
		OriginalBytes: s.asset.Size,
		FinalBytes:    candidateBytes,
	}

	if !plan.Converts(source) {
		if err := os.Rename(s.candidatePath, s.asset.Path); err != nil {
			return Outcome{}, fmt.Errorf("committing candidate: %w", err)
		}
		s.candidatePath = ""
		return outcome, nil
	}

	newName := s.asset.Name() + "." + plan.Container.Ext()
	newPath := filepath.Join(filepath.Dir(s.asset.Path), newName)

	if err := os.Remove(s.asset.Path); err != nil {
		return Outcome{}, fmt.Errorf("removing original: %w", err)
	}
	if err := os.Rename(s.candidatePath, newPath); err != nil {
		return Outcome{}, fmt.Errorf("committing converted candidate: %w", err)
	}
	s.candidatePath = ""

	outcome.Converted = true
	outcome.NewName = newName
	return outcome, nil
}

func (s *session) removeCandidate() {
	if s.candidatePath == "" {
		return
	}
	os.Remove(s.candidatePath)
	s.candidatePath = ""
}
