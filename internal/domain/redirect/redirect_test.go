package redirect

import (
	"net/url"
	"testing"
)

func TestBuildAppendsIdentityParams(t *testing.T) {
	got := Build("https://survey.example.com/jfe/form/SV_123", "PROLIFIC42", "sess-1", "cond_a")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse built url: %v", err)
	}
	q := u.Query()
	if q.Get("pid") != "PROLIFIC42" {
		t.Errorf("pid = %q, want PROLIFIC42", q.Get("pid"))
	}
	if q.Get("chat_session_id") != "sess-1" {
		t.Errorf("chat_session_id = %q, want sess-1", q.Get("chat_session_id"))
	}
	if q.Get("condition_id") != "cond_a" {
		t.Errorf("condition_id = %q, want cond_a", q.Get("condition_id"))
	}
}

func TestBuildPreservesExistingQuery(t *testing.T) {
	got := Build("https://survey.example.com/form?source=chat", "p1", "s1", "c1")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse built url: %v", err)
	}
	q := u.Query()
	if q.Get("source") != "chat" {
		t.Errorf("existing param lost: source = %q", q.Get("source"))
	}
	if q.Get("pid") != "p1" {
		t.Errorf("pid = %q, want p1", q.Get("pid"))
	}
}

func TestBuildEmptyBaseDisablesRedirect(t *testing.T) {
	if got := Build("", "p1", "s1", "c1"); got != "" {
		t.Errorf("Build with empty base = %q, want empty", got)
	}
}

func TestBuildEncodesParamValues(t *testing.T) {
	got := Build("https://survey.example.com/form", "p 1&x=2", "s1", "c1")

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse built url: %v", err)
	}
	if u.Query().Get("pid") != "p 1&x=2" {
		t.Errorf("pid round-trip = %q, want %q", u.Query().Get("pid"), "p 1&x=2")
	}
}
