package email

import (
	"context"
	"strings"
	"testing"
)

// TestRenderMarkdown tests markdown conversion and raw HTML suppression.
func TestRenderMarkdown(t *testing.T) {
	html, err := RenderMarkdown("**Skills** updated\n\n- Boilers\n- Gas")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	for _, want := range []string{"<strong>Skills</strong>", "<li>Boilers</li>", "<li>Gas</li>"} {
		if !strings.Contains(html, want) {
			t.Errorf("output %q missing %q", html, want)
		}
	}

	html, _ = RenderMarkdown("<script>alert(1)</script>")
	if strings.Contains(html, "<script>") {
		t.Errorf("raw HTML leaked: %q", html)
	}
}

// TestMarkdownHTML tests display rendering of descriptions.
func TestMarkdownHTML(t *testing.T) {
	if got := MarkdownHTML("  \n "); got != "" {
		t.Errorf("blank source rendered as %q", got)
	}
	got := MarkdownHTML("Covers **after-hours** callouts")
	if !strings.Contains(got, "<strong>after-hours</strong>") {
		t.Errorf("got %q", got)
	}
}

// TestNoopSender_RecordsRequests tests that the noop sender keeps every request.
func TestNoopSender_RecordsRequests(t *testing.T) {
	s := NewNoopSender()
	ctx := context.Background()
	if _, err := s.Send(ctx, SendRequest{To: []string{"a@x.test"}, Subject: "one"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	results, err := s.SendBatch(ctx, []SendRequest{{Subject: "two"}, {Subject: "three"}})
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("got %d results, want 2", len(results))
	}
	sent := s.Sent()
	if len(sent) != 3 || sent[2].Subject != "three" {
		t.Errorf("unexpected sent list %+v", sent)
	}
}

// TestResendSender_Defaults tests that empty From and ReplyTo fall back to sender defaults.
func TestResendSender_Defaults(t *testing.T) {
	s := NewResendSender("re_test", "FieldOps <noreply@fieldops.test>", "ops@fieldops.test")
	p := s.params(SendRequest{To: []string{"a@x.test"}, Subject: "hi"})
	if p.From != "FieldOps <noreply@fieldops.test>" || p.ReplyTo != "ops@fieldops.test" {
		t.Errorf("unexpected params %+v", p)
	}
	p = s.params(SendRequest{From: "other@x.test", ReplyTo: "r@x.test"})
	if p.From != "other@x.test" || p.ReplyTo != "r@x.test" {
		t.Errorf("explicit values overridden: %+v", p)
	}
}
