package advisory

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/formvault/formvault/internal/forms"
)

// fakeAdvisor returns queued replies, optionally blocking until
// released so tests can interleave generations deterministically.
type fakeAdvisor struct {
	calls   chan string // receives the prompt of each call
	release chan struct{}
	replies chan reply
}

type reply struct {
	text string
	err  error
}

func newFakeAdvisor() *fakeAdvisor {
	return &fakeAdvisor{
		calls:   make(chan string, 8),
		release: make(chan struct{}, 8),
		replies: make(chan reply, 8),
	}
}

func (f *fakeAdvisor) Advise(ctx context.Context, message, _ string) (string, error) {
	f.calls <- message
	select {
	case <-f.release:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	r := <-f.replies
	return r.text, r.err
}

type fakePublisher struct {
	ready chan uint64
}

func (f *fakePublisher) PublishAdvisoryReady(_, _ string, gen uint64) {
	f.ready <- gen
}

func testTemplate() *forms.Template {
	return &forms.Template{
		ID:   "t",
		Name: "Test Form",
		Fields: []forms.FieldDescriptor{
			{ID: "name", Aliases: []string{"Name"}},
			{ID: "email", Aliases: []string{"Email"}},
		},
	}
}

func TestMergeAdvisory(t *testing.T) {
	existing := []string{`"Name" is required but missing from your vault`}
	reply := "- Check the Aadhaar digits carefully\n• Email domain looks unusual\n\n* Verify the PIN code\nfourth line should be capped"

	got := mergeAdvisory(existing, reply, 3, 20)
	want := []string{
		`"Name" is required but missing from your vault`,
		"Check the Aadhaar digits carefully",
		"Email domain looks unusual",
		"Verify the PIN code",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merge = %v, want %v", got, want)
	}
}

func TestMergeAdvisory_DedupeByPrefix(t *testing.T) {
	existing := []string{"Aadhaar must be exactly 12 digits"}
	reply := "- Aadhaar must be exact, double-check it"

	got := mergeAdvisory(existing, reply, 3, 20)
	if len(got) != 1 {
		t.Errorf("merge = %v, prefix duplicate should be skipped", got)
	}
}

func TestMergeAdvisory_ShortPrefixThreshold(t *testing.T) {
	existing := []string{"Check name"}
	reply := "Check everything twice"

	// Prefix of 5 ("Check") collides; prefix of 20 does not.
	if got := mergeAdvisory(existing, reply, 3, 5); len(got) != 1 {
		t.Errorf("prefix=5 merge = %v, want duplicate skipped", got)
	}
	if got := mergeAdvisory(existing, reply, 3, 20); len(got) != 2 {
		t.Errorf("prefix=20 merge = %v, want line kept", got)
	}
}

func TestSubmit_LocalWarningsImmediate(t *testing.T) {
	fa := newFakeAdvisor()
	d := NewDispatcher(Config{Advisor: fa, Timeout: time.Second})

	local := []string{"local warning"}
	d.Submit("u1", testTemplate(), nil, local)

	if got := d.Warnings("u1", "t"); !reflect.DeepEqual(got, local) {
		t.Errorf("warnings before advisory = %v, want local only", got)
	}

	<-fa.calls
	fa.replies <- reply{text: "- advisory line"}
	fa.release <- struct{}{}

	deadline := time.After(2 * time.Second)
	for {
		if got := d.Warnings("u1", "t"); len(got) == 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("advisory never merged")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestSubmit_StaleResponseDropped(t *testing.T) {
	fa := newFakeAdvisor()
	pub := &fakePublisher{ready: make(chan uint64, 4)}
	d := NewDispatcher(Config{Advisor: fa, Events: pub, Timeout: time.Second})

	tmpl := testTemplate()
	d.Submit("u1", tmpl, nil, []string{"first local"})
	<-fa.calls

	gen2 := d.Submit("u1", tmpl, nil, []string{"second local"})
	<-fa.calls

	// Complete the first (now stale) call, then the current one.
	fa.replies <- reply{text: "stale advisory"}
	fa.release <- struct{}{}
	fa.replies <- reply{text: "fresh advisory"}
	fa.release <- struct{}{}

	// Only the fresh generation may publish.
	select {
	case gen := <-pub.ready:
		if gen != gen2 {
			t.Fatalf("published generation = %d, want %d", gen, gen2)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no advisory.ready published")
	}

	got := d.Warnings("u1", "t")
	for _, w := range got {
		if w == "stale advisory" {
			t.Errorf("stale advisory applied: %v", got)
		}
	}
	if !reflect.DeepEqual(got, []string{"second local", "fresh advisory"}) {
		t.Errorf("warnings = %v", got)
	}
}

func TestSubmit_AdvisoryFailureSilent(t *testing.T) {
	fa := newFakeAdvisor()
	d := NewDispatcher(Config{Advisor: fa, Timeout: time.Second})

	d.Submit("u1", testTemplate(), nil, []string{"local"})
	<-fa.calls
	fa.replies <- reply{err: errors.New("gateway down")}
	fa.release <- struct{}{}

	// Give the goroutine a moment; warnings must stay local.
	time.Sleep(50 * time.Millisecond)
	if got := d.Warnings("u1", "t"); !reflect.DeepEqual(got, []string{"local"}) {
		t.Errorf("warnings after failure = %v, want local only", got)
	}
}

func TestSubmit_NilAdvisor(t *testing.T) {
	d := NewDispatcher(Config{})
	gen := d.Submit("u1", testTemplate(), nil, []string{"local"})
	if gen == 0 {
		t.Error("generation should still advance without an advisor")
	}
	if got := d.Warnings("u1", "t"); !reflect.DeepEqual(got, []string{"local"}) {
		t.Errorf("warnings = %v", got)
	}
}

func TestBuildMessage_TemplateOrderAndFilledOnly(t *testing.T) {
	tmpl := testTemplate()
	statuses := map[string]forms.FieldStatus{
		"email": {Value: "a@b.c", Status: forms.StatusFilled},
		"name":  {Value: "JOHN", Status: forms.StatusFilled},
	}
	msg := buildMessage(tmpl, statuses)
	if !containsInOrder(msg, "name: JOHN", "email: a@b.c") {
		t.Errorf("message = %q", msg)
	}

	statuses["email"] = forms.FieldStatus{Status: forms.StatusEmpty}
	msg = buildMessage(tmpl, statuses)
	if containsInOrder(msg, "email:") {
		t.Errorf("empty field leaked into message: %q", msg)
	}
}

func containsInOrder(s string, parts ...string) bool {
	idx := 0
	for _, p := range parts {
		i := indexFrom(s, p, idx)
		if i < 0 {
			return false
		}
		idx = i + len(p)
	}
	return true
}

func indexFrom(s, sub string, from int) int {
	if from >= len(s) {
		return -1
	}
	for i := from; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
