package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rcadesk/internal/domain"
	"rcadesk/internal/seed"
)

type fakeGen struct {
	text   string
	err    error
	calls  int
	system string
	prompt string
}

func (f *fakeGen) Generate(_ context.Context, system, prompt string) (string, error) {
	f.calls++
	f.system, f.prompt = system, prompt
	return f.text, f.err
}

var moni = domain.User{ID: 1, Name: "Moni Roy", Role: domain.RoleAdmin}

func TestAskWithoutKey(t *testing.T) {
	r := Assistant{}.Ask(context.Background(), moni, nil, "anything")
	if r.Text != ReplyUnavailable || !r.Fallback {
		t.Fatalf("unexpected reply %+v", r)
	}
}

func TestAskCallFailureIsNotRetried(t *testing.T) {
	gen := &fakeGen{err: errors.New("quota")}
	r := Assistant{Gen: gen}.Ask(context.Background(), moni, nil, "q")
	if r.Text != ReplyCallFailed || gen.calls != 1 {
		t.Fatalf("unexpected reply %+v after %d calls", r, gen.calls)
	}
}

func TestAskEmptyResponse(t *testing.T) {
	r := Assistant{Gen: &fakeGen{text: "  "}}.Ask(context.Background(), moni, nil, "q")
	if r.Text != ReplyEmpty {
		t.Fatalf("unexpected reply %+v", r)
	}
}

func TestAskPromptCarriesBriefs(t *testing.T) {
	gen := &fakeGen{text: "Fiber network is the most valuable."}
	projects := seed.Default().Projects
	r := Assistant{Gen: gen}.Ask(context.Background(), moni, projects, "which project is most valuable")
	if r.Fallback || r.Text != gen.text {
		t.Fatalf("unexpected reply %+v", r)
	}
	if !strings.Contains(gen.system, "Moni Roy, who is an admin") {
		t.Fatalf("system instruction missing actor: %q", gen.system)
	}
	for _, want := range []string{`"clientName": "City of Arcadia, FL"`, `"value": "12.5M"`, `"which project is most valuable"`} {
		if !strings.Contains(gen.prompt, want) {
			t.Fatalf("prompt missing %s:\n%s", want, gen.prompt)
		}
	}
	for _, leaked := range []string{`"expenses"`, `"rate"`, `"trackedHours"`, `"description"`} {
		if strings.Contains(gen.prompt, leaked) {
			t.Fatalf("prompt leaked %s", leaked)
		}
	}
}

func TestDraft(t *testing.T) {
	gen := &fakeGen{text: "Hi"}
	Assistant{Gen: gen}.Draft(context.Background(), moni, "Coastal Construction")
	if !strings.Contains(gen.prompt, "Draft a professional follow-up email to Coastal Construction") {
		t.Fatalf("unexpected prompt %q", gen.prompt)
	}
	if !strings.Contains(gen.prompt, "[]") {
		t.Fatalf("draft should send an empty project list: %q", gen.prompt)
	}
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(2)
	if !l.Allow(1) || !l.Allow(1) {
		t.Fatalf("burst denied")
	}
	if l.Allow(1) {
		t.Fatalf("third call within the minute allowed")
	}
	if !l.Allow(2) {
		t.Fatalf("other actor limited")
	}
	if !NewLimiter(0).Allow(1) {
		t.Fatalf("disabled limiter denied")
	}
}
