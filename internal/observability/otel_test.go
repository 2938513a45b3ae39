package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/deckforge-backend/internal/config"
	"github.com/yungbote/deckforge-backend/internal/platform/logger"
)

func TestParseHeaders(t *testing.T) {
	assert.Nil(t, ParseHeaders(""))
	assert.Nil(t, ParseHeaders(" , =x, y= "))
	assert.Equal(t, map[string]string{
		"authorization": "Bearer abc=",
		"x-team":        "decks",
	}, ParseHeaders("authorization=Bearer abc=, x-team = decks ,broken"))
}

func TestClampRatio(t *testing.T) {
	assert.Equal(t, 0.0, clampRatio(-1))
	assert.Equal(t, 1.0, clampRatio(3))
	assert.Equal(t, 0.25, clampRatio(0.25))
}

func TestNewTracerProviderWithStdoutExporter(t *testing.T) {
	tp := newTracerProvider(context.Background(), logger.Nop(), config.TracingConfig{SampleRatio: 1}, "1.0.0")
	require.NotNil(t, tp)
	_, span := tp.Tracer("test").Start(context.Background(), "span")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestInitOTelDisabledIsNoop(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.Nop(), config.TracingConfig{}, "1.0.0")
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
