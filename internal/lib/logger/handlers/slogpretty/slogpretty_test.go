package slogpretty

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler_WritesMessageAndAttrs(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer

	opts := PrettyHandlerOptions{SlogOpts: &slog.HandlerOptions{Level: slog.LevelDebug}}
	log := slog.New(opts.NewPrettyHandler(&buf)).With(slog.String("op", "service.OrderService.CreateDraftOrder"))

	log.Info("draft order created", slog.String("orderID", "o-1"))

	out := buf.String()
	assert.Contains(t, out, "INFO:")
	assert.Contains(t, out, "draft order created")
	assert.Contains(t, out, `"op": "service.OrderService.CreateDraftOrder"`)
	assert.Contains(t, out, `"orderID": "o-1"`)
}
