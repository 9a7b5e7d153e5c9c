package services_test

import (
	"context"
	"testing"

	"chronoreel/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithPartIndex(ctx, 2)
	ctx = services.WithBatchIndex(ctx, 7)
	ctx = services.WithComponent(ctx, "encoder")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if part, ok := services.PartIndexFromContext(ctx); !ok || part != 2 {
		t.Fatalf("unexpected part index: %v %v", part, ok)
	}
	if batch, ok := services.BatchIndexFromContext(ctx); !ok || batch != 7 {
		t.Fatalf("unexpected batch index: %v %v", batch, ok)
	}
	if component, ok := services.ComponentFromContext(ctx); !ok || component != "encoder" {
		t.Fatalf("unexpected component: %v %v", component, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithPartIndex(ctx, 0)
	ctx = services.WithBatchIndex(ctx, -1)
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id")
	}
	if _, ok := services.PartIndexFromContext(ctx); ok {
		t.Fatal("expected no part index")
	}
	if _, ok := services.BatchIndexFromContext(ctx); ok {
		t.Fatal("expected no batch index")
	}
}
