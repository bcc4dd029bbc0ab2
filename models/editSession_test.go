package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mmdatafocus/inventory_backend/appctx"
	"github.com/mmdatafocus/inventory_backend/models"
	"github.com/mmdatafocus/inventory_backend/utils"
)

type sampleEdit struct {
	Id       int      `json:"id"`
	Original []string `json:"original"`
}

func sessionContext(userId int) context.Context {
	return utils.SetActorInContext(context.Background(), appctx.Actor{UserId: userId, Login: "user"})
}

func TestEditSessionLifecycle(t *testing.T) {
	owner := sessionContext(1)
	stranger := sessionContext(2)

	token, err := models.SaveEditSession(owner, "equipment", &sampleEdit{Id: 7, Original: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("SaveEditSession: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}

	// 1) the owner gets the snapshot back
	edit, err := models.LoadEditSession[sampleEdit](owner, "equipment", token)
	if err != nil {
		t.Fatalf("LoadEditSession: %v", err)
	}
	if edit.Id != 7 || len(edit.Original) != 2 {
		t.Fatalf("edit = %+v", edit)
	}

	// 2) nobody else can use it, and it cannot be loaded as another kind
	if _, err := models.LoadEditSession[sampleEdit](stranger, "equipment", token); !errors.Is(err, utils.ErrPermissionDenied) {
		t.Fatalf("stranger err = %v, want permission denied", err)
	}
	if _, err := models.LoadEditSession[sampleEdit](owner, "consumable", token); !errors.Is(err, models.ErrEditSessionNotFound) {
		t.Fatalf("wrong kind err = %v, want ErrEditSessionNotFound", err)
	}

	// 3) a dropped session is gone
	if err := models.DropEditSession(owner, token); err != nil {
		t.Fatalf("DropEditSession: %v", err)
	}
	if _, err := models.LoadEditSession[sampleEdit](owner, "equipment", token); !errors.Is(err, models.ErrEditSessionNotFound) {
		t.Fatalf("after drop err = %v, want ErrEditSessionNotFound", err)
	}
}

func TestEditSessionExpires(t *testing.T) {
	// a negative lifetime makes the session expire as soon as it is saved
	t.Setenv("EDIT_SESSION_MINUTES", "-1")
	ctx := sessionContext(3)

	token, err := models.SaveEditSession(ctx, "inventory", &sampleEdit{Id: 1})
	if err != nil {
		t.Fatalf("SaveEditSession: %v", err)
	}
	if _, err := models.LoadEditSession[sampleEdit](ctx, "inventory", token); !errors.Is(err, models.ErrEditSessionNotFound) {
		t.Fatalf("expired session err = %v, want ErrEditSessionNotFound", err)
	}
}
