package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-erp-api/pkg/logger"
)

func TestComponent_AgregaCampo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info").Component("sales")

	log.Info().Str("sale_id", "v-1").Msg("venta creada")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "sales", line["component"])
	assert.Equal(t, "v-1", line["sale_id"])
	assert.Equal(t, "venta creada", line["message"])
}

func TestNivel_FiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "WARN")

	log.Debug().Msg("oculto")
	log.Info().Msg("oculto")
	assert.Empty(t, buf.String())

	log.Warn().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestNivelInvalido_UsaInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "verboso")

	log.Debug().Msg("oculto")
	log.Info().Msg("visible")
	assert.NotContains(t, buf.String(), "oculto")
	assert.Contains(t, buf.String(), "visible")
}

func TestNop_NoEscribe(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("nada") })
}
