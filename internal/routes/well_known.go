package routes

import (
	"encoding/json"
	"net/http"

	"github.com/matrix-org/gomatrixserverlib/spec"

	"github.com/beeper/wellknownserv/internal/util"
)

// https://spec.matrix.org/v1.10/server-server-api/#getwell-knownmatrixserver
type wellKnownServer struct {
	Server spec.ServerName `json:"m.server"`
}

func makeWellKnownServerBody(server spec.ServerName) []byte {
	b, err := json.Marshal(wellKnownServer{server})
	if err != nil {
		panic(err)
	}
	return b
}

func (rt *Routes) WellKnownServer(w http.ResponseWriter, r *http.Request) {
	util.ResponseRawJSON(w, r, http.StatusOK, rt.wellKnownServerBody)
}
