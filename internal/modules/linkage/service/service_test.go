package service

import (
	"errors"
	"testing"

	"github.com/amrahli/newsgate/internal/modules/linkage/domain"
	"github.com/amrahli/newsgate/internal/modules/linkage/repository"
	errs "github.com/amrahli/newsgate/internal/shared/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	repo, err := repository.NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(repo)
}

func TestCreateThenGet(t *testing.T) {
	svc := newTestService(t)

	resources := []domain.Resource{{URL: "https://t.me/x"}, {URL: "https://rss.example.com/feed"}}
	if err := svc.Create("Tech", resources, 111, "@pub"); err != nil {
		t.Fatal(err)
	}

	l, err := svc.Get("Tech")
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsActive {
		t.Error("new linkage should be active")
	}
	if len(l.Resources) != 2 || l.Resources[0].URL != "https://t.me/x" {
		t.Errorf("resources = %+v", l.Resources)
	}
	if l.ModerationChatID != 111 || l.PublicationChannel != "@pub" {
		t.Errorf("targets = %d / %q", l.ModerationChatID, l.PublicationChannel)
	}
	if len(l.PendingItems) != 0 {
		t.Errorf("new linkage has pending items: %+v", l.PendingItems)
	}
}

func TestCreateDuplicateFails(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Create("Tech", []domain.Resource{{URL: "u"}}, 1, "@c"); err != nil {
		t.Fatal(err)
	}
	err := svc.Create("Tech", []domain.Resource{{URL: "v"}}, 2, "@d")
	if !errors.Is(err, errs.ErrLinkageExists) {
		t.Errorf("duplicate create error = %v, want ErrLinkageExists", err)
	}
}

func TestCreateWithoutResourcesFails(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Create("Tech", nil, 1, "@c"); !errors.Is(err, errs.ErrNoResources) {
		t.Errorf("error = %v, want ErrNoResources", err)
	}
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Create("Tech", []domain.Resource{{URL: "u"}}, 1, "@c"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete("Tech"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get("Tech"); !errors.Is(err, errs.ErrLinkageNotFound) {
		t.Errorf("Get after delete = %v, want ErrLinkageNotFound", err)
	}
	if err := svc.Delete("Tech"); !errors.Is(err, errs.ErrLinkageNotFound) {
		t.Errorf("double delete = %v, want ErrLinkageNotFound", err)
	}
}

func TestToggleActive(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Create("Tech", []domain.Resource{{URL: "u"}}, 1, "@c"); err != nil {
		t.Fatal(err)
	}

	active, err := svc.ToggleActive("Tech")
	if err != nil {
		t.Fatal(err)
	}
	if active {
		t.Error("first toggle should pause the linkage")
	}

	active, err = svc.ToggleActive("Tech")
	if err != nil {
		t.Fatal(err)
	}
	if !active {
		t.Error("second toggle should resume the linkage")
	}
}

func TestResourceEditing(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Create("Tech", []domain.Resource{{URL: "a"}}, 1, "@c"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddResources("Tech", []domain.Resource{{URL: "b"}, {URL: "c"}}); err != nil {
		t.Fatal(err)
	}
	if err := svc.RemoveResource("Tech", "b"); err != nil {
		t.Fatal(err)
	}

	l, err := svc.Get("Tech")
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Resources) != 2 || l.Resources[0].URL != "a" || l.Resources[1].URL != "c" {
		t.Errorf("resources after edit = %+v", l.Resources)
	}

	if err := svc.RemoveResource("Tech", "nope"); err == nil {
		t.Error("removing an unknown resource should fail")
	}
}

func TestSetPrompt(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Create("Tech", []domain.Resource{{URL: "a"}}, 1, "@c"); err != nil {
		t.Fatal(err)
	}
	if err := svc.SetPrompt("Tech", "rewrite casually"); err != nil {
		t.Fatal(err)
	}
	l, err := svc.Get("Tech")
	if err != nil {
		t.Fatal(err)
	}
	if l.Prompt != "rewrite casually" {
		t.Errorf("prompt = %q", l.Prompt)
	}
}

func TestNames(t *testing.T) {
	svc := newTestService(t)

	for _, name := range []string{"b", "a", "c"} {
		if err := svc.Create(name, []domain.Resource{{URL: "u"}}, 1, "@c"); err != nil {
			t.Fatal(err)
		}
	}
	names, err := svc.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("Names() = %v", names)
	}
}
