package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
)

func TestParseHeaders(t *testing.T) {
	assert.Nil(t, parseHeaders(""))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, parseHeaders("a=1, b=2,broken,=x"))
}

func TestParseRatio(t *testing.T) {
	assert.InDelta(t, 0.1, parseRatio("", 0.1), 0)
	assert.InDelta(t, 0.1, parseRatio("nope", 0.1), 0)
	assert.InDelta(t, 0, parseRatio("-2", 0.1), 0)
	assert.InDelta(t, 1, parseRatio("7", 0.1), 0)
	assert.InDelta(t, 0.5, parseRatio("0.5", 0.1), 0)
}

func TestInitOTelDisabled(t *testing.T) {
	shutdown := InitOTel(context.Background(), logger.Nop(), OtelConfig{Enabled: false})
	assert.NoError(t, shutdown(context.Background()))
}
