package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchcontrol/internal/handlers"
	"launchcontrol/internal/routes"
	"launchcontrol/pkg/curve"
	"launchcontrol/pkg/launchpad"
	"launchcontrol/pkg/venue"
)

const (
	creatorAddr = "0x00000000000000000000000000000000000000Cc"
	buyerAddr   = "0x0000000000000000000000000000000000000b01"
	sinkAddr    = "0x0000000000000000000000000000000000000FEe"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := launchpad.NewRegistry()
	locker := venue.NewLocker()
	require.NoError(t, reg.RegisterCurve("cp-grad8", curve.GraduateAt8ETH()))
	require.NoError(t, reg.RegisterStrategy("univ2", venue.NewUniswapV2Strategy(locker)))
	require.NoError(t, reg.AllowPair("cp-grad8", "univ2"))

	defaults := launchpad.Defaults{
		BuyFeeBps:           100,
		SellFeeBps:          100,
		GraduationThreshold: uint256.MustFromDecimal("8000000000000000000"),
		ExcessCap:           uint256.MustFromDecimal("500000000000000000"),
		MigrationFee:        uint256.MustFromDecimal("500000000000000000"),
		CreatorAllocation:   uint256.MustFromDecimal("10000000000000000000000000"),
		CurveID:             "cp-grad8",
		StrategyID:          "univ2",
	}

	l := logger.New()
	l.SetOutput(io.Discard)
	engine, err := launchpad.NewEngine(reg, defaults, logger.NewEntry(l))
	require.NoError(t, err)

	handlers.Setup(engine)
	return routes.SetupRouter(handlers.NewStreamHub())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			out = nil
		}
	}
	return w, out
}

func launchTestAsset(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/assets", gin.H{
		"name":    "Test Asset",
		"symbol":  "TEST",
		"creator": creatorAddr,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := resp["asset_id"].(string)
	require.Len(t, id, 66)
	return id
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestCORSOriginsReadAtStartup(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://app.local, http://admin.local")
	r := newTestRouter(t)

	doOrigin := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("configured origin echoed", func(t *testing.T) {
		w := doOrigin("http://app.local")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "http://app.local", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin not echoed", func(t *testing.T) {
		w := doOrigin("http://evil.local")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("env changes after startup have no effect", func(t *testing.T) {
		os.Setenv("ALLOWED_ORIGINS", "http://evil.local")
		w := doOrigin("http://evil.local")
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/assets", nil)
		req.Header.Set("Origin", "http://app.local")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestLaunchAssetAPI(t *testing.T) {
	r := newTestRouter(t)

	t.Run("missing fields rejected", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/assets", gin.H{"name": "X"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad creator address rejected", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/assets", gin.H{
			"name": "X", "symbol": "X", "creator": "not-an-address",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("launch and read back", func(t *testing.T) {
		id := launchTestAsset(t, r)

		w, resp := doJSON(t, r, http.MethodGet, "/assets/"+id, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0", resp["eth_collected"])
		assert.Equal(t, false, resp["graduated"])

		w, resp = doJSON(t, r, http.MethodGet, "/assets", nil)
		require.Equal(t, http.StatusOK, w.Code)
		ids, _ := resp["assets"].([]interface{})
		assert.Len(t, ids, 1)
	})

	t.Run("unknown asset yields 404", func(t *testing.T) {
		missing := "0x" + string(bytes.Repeat([]byte("0"), 63)) + "1"
		w, _ := doJSON(t, r, http.MethodGet, "/assets/"+missing, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestTradeAPI(t *testing.T) {
	r := newTestRouter(t)
	id := launchTestAsset(t, r)

	t.Run("quote then buy", func(t *testing.T) {
		w, quote := doJSON(t, r, http.MethodGet, "/assets/"+id+"/quote/buy?amount=1000000000000000000", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		wantTokens := quote["tokens"].(string)

		w, receipt := doJSON(t, r, http.MethodPost, "/assets/"+id+"/buy", gin.H{
			"trader": buyerAddr,
			"amount": "1000000000000000000",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, wantTokens, receipt["tokens"])
		assert.Equal(t, false, receipt["graduated"])

		w, bal := doJSON(t, r, http.MethodGet, "/assets/"+id+"/balance/"+buyerAddr, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, wantTokens, bal["balance"])
	})

	t.Run("zero amount rejected", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/assets/"+id+"/buy", gin.H{
			"trader": buyerAddr,
			"amount": "0",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed amount rejected", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/assets/"+id+"/buy", gin.H{
			"trader": buyerAddr,
			"amount": "1.5e18",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("sell roundtrip", func(t *testing.T) {
		w, bal := doJSON(t, r, http.MethodGet, "/assets/"+id+"/balance/"+buyerAddr, nil)
		require.Equal(t, http.StatusOK, w.Code)

		w, receipt := doJSON(t, r, http.MethodPost, "/assets/"+id+"/sell", gin.H{
			"trader": buyerAddr,
			"amount": bal["balance"],
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "sell", receipt["side"])
	})

	t.Run("sell with no balance rejected", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/assets/"+id+"/sell", gin.H{
			"trader": buyerAddr,
			"amount": "1000",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGraduationAPI(t *testing.T) {
	r := newTestRouter(t)
	id := launchTestAsset(t, r)

	t.Run("over the cap rejected", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/assets/"+id+"/buy", gin.H{
			"trader": buyerAddr,
			"amount": "9000000000000000000",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("threshold crossing graduates in the same call", func(t *testing.T) {
		w, receipt := doJSON(t, r, http.MethodPost, "/assets/"+id+"/buy", gin.H{
			"trader": buyerAddr,
			"amount": "8080808080808080809",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, true, receipt["graduated"])
		assert.Equal(t, "800000000000000000000000000", receipt["tokens"])

		mig, ok := receipt["migration"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "190000000000000000000000000", mig["token_amount"])
		assert.Equal(t, "7500000000000000000", mig["eth_amount"])
	})

	t.Run("trading closed afterwards", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodPost, "/assets/"+id+"/buy", gin.H{
			"trader": buyerAddr,
			"amount": "1000000000000000000",
		})
		assert.Equal(t, http.StatusConflict, w.Code)

		w, _ = doJSON(t, r, http.MethodGet, "/assets/"+id+"/quote/buy?amount=1", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("treasury accrued and withdrawable", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodGet, "/treasury", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "580808080808080809", resp["balance"])

		w, resp = doJSON(t, r, http.MethodPost, "/treasury/withdraw", gin.H{
			"to":     sinkAddr,
			"amount": "580808080808080809",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "0", resp["remaining"])
	})

	t.Run("event stream covers the lifecycle", func(t *testing.T) {
		w, resp := doJSON(t, r, http.MethodGet, "/events?since_seq=0&limit=100", nil)
		require.Equal(t, http.StatusOK, w.Code)
		events, _ := resp["events"].([]interface{})
		require.NotEmpty(t, events)

		var types []string
		for _, raw := range events {
			ev := raw.(map[string]interface{})
			types = append(types, ev["type"].(string))
		}
		assert.Contains(t, types, "issuance")
		assert.Contains(t, types, "trade")
		assert.Contains(t, types, "graduation")
		assert.Contains(t, types, "treasury_withdrawal")
	})
}

func TestQuoteAPI(t *testing.T) {
	r := newTestRouter(t)
	id := launchTestAsset(t, r)

	t.Run("exact-out buy quote", func(t *testing.T) {
		w, q := doJSON(t, r, http.MethodGet, "/assets/"+id+"/quote/buy?amount=1000000000000000000000000&mode=exact_out", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "1000000000000000000000000", q["tokens"])
	})

	t.Run("bad mode rejected", func(t *testing.T) {
		w, _ := doJSON(t, r, http.MethodGet, "/assets/"+id+"/quote/buy?amount=1&mode=sideways", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("max buy reports graduation", func(t *testing.T) {
		w, q := doJSON(t, r, http.MethodGet, "/assets/"+id+"/max-buy", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, q["would_graduate"])
	})
}
