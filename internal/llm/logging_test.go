package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/ytakagi/excelquiz/internal/store"
)

type recordingLog struct {
	recs []store.AdviceRequestRecord
}

func (l *recordingLog) Append(_ context.Context, rec store.AdviceRequestRecord) error {
	l.recs = append(l.recs, rec)
	return nil
}

func (l *recordingLog) Recent(context.Context, int) ([]store.AdviceRequestRecord, error) {
	return l.recs, nil
}

func TestMockProviderFIFO(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Text: "first"},
		MockResponse{Text: "second"},
	)

	ctx := context.Background()
	r1, err := m.Generate(ctx, Request{Prompt: "a"})
	if err != nil || r1.Text != "first" {
		t.Fatalf("first call = %v, %v", r1, err)
	}
	r2, err := m.Generate(ctx, Request{Prompt: "b"})
	if err != nil || r2.Text != "second" {
		t.Fatalf("second call = %v, %v", r2, err)
	}

	// Drained queue reports unavailable.
	_, err = m.Generate(ctx, Request{Prompt: "c"})
	var unavailable *ErrProviderUnavailable
	if !errors.As(err, &unavailable) {
		t.Errorf("drained mock returned %v, want ErrProviderUnavailable", err)
	}

	if m.CallCount() != 3 {
		t.Errorf("CallCount = %d, want 3", m.CallCount())
	}
	if m.Calls[1].Prompt != "b" {
		t.Errorf("Calls[1].Prompt = %q", m.Calls[1].Prompt)
	}
}

func TestLoggingProviderRecordsSuccess(t *testing.T) {
	log := &recordingLog{}
	p := WithLogging(NewMockProvider(MockResponse{Text: "ok"}), log)

	ctx := WithPurpose(context.Background(), "result-advice")
	resp, err := p.Generate(ctx, Request{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("Text = %q", resp.Text)
	}

	if len(log.recs) != 1 {
		t.Fatalf("logged %d records, want 1", len(log.recs))
	}
	rec := log.recs[0]
	if !rec.Success {
		t.Error("Success = false")
	}
	if rec.Purpose != "result-advice" {
		t.Errorf("Purpose = %q", rec.Purpose)
	}
}

func TestLoggingProviderRecordsFailure(t *testing.T) {
	log := &recordingLog{}
	p := WithLogging(NewMockProvider(MockResponse{Err: &ErrQuotaExceeded{}}), log)

	_, err := p.Generate(context.Background(), Request{Prompt: "hi"})
	if err == nil {
		t.Fatal("Generate succeeded, want error")
	}

	if len(log.recs) != 1 {
		t.Fatalf("logged %d records, want 1", len(log.recs))
	}
	rec := log.recs[0]
	if rec.Success {
		t.Error("Success = true for a failed request")
	}
	if rec.ErrorMessage == "" {
		t.Error("ErrorMessage empty")
	}
	if rec.Purpose != "unknown" {
		t.Errorf("Purpose = %q, want unknown default", rec.Purpose)
	}
}

func TestPurposeFrom(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("PurposeFrom(bare ctx) = %q", got)
	}
	ctx := WithPurpose(context.Background(), "history-advice")
	if got := PurposeFrom(ctx); got != "history-advice" {
		t.Errorf("PurposeFrom = %q", got)
	}
}
