package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vocdoni/vocdoni-tally/log"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
	log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// proposalIDParam parses the proposal id URL parameter. Both decimal and 0x
// prefixed hexadecimal values are accepted.
func proposalIDParam(r *http.Request) (*big.Int, error) {
	return parseProposalID(chi.URLParam(r, ProposalURLParam))
}

func parseProposalID(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty proposal id")
	}
	pid, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid proposal id %q", s)
	}
	if pid.Sign() < 0 || pid.BitLen() > 256 {
		return nil, fmt.Errorf("proposal id %q out of uint256 range", s)
	}
	return pid, nil
}
