package mirrorhub

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type (
	status struct {
		Status          string      `json:"status"`
		Time            time.Time   `json:"time"`
		Uptime          string      `json:"uptime"`
		GitHash         string      `json:"gitHash"`
		ApplicationName string      `json:"applicationName"`
		InstanceName    string      `json:"instanceName"`
		Environment     Environment `json:"environment"`

		Web      HTTP      `json:"web"`
		Storage  Storage   `json:"storage"`
		Database *dbStatus `json:"database,omitempty"`
	}

	dbStatus struct {
		Postgres
		Status string `json:"status"`
	}
)

const (
	statusOnline   = "online"
	statusDegraded = "degraded"
)

func (c *Container) getSystemStatus(ctx context.Context) status {
	s := status{
		Status:          statusOnline,
		Time:            time.Now(),
		Uptime:          time.Since(c.startedAt).Round(time.Second).String(),
		GitHash:         gitHash(),
		ApplicationName: c.Config.ApplicationName,
		InstanceName:    c.Config.InstanceName,
		Environment:     c.Config.Environment,
		Web:             c.Config.HTTP,
		Storage:         c.Config.Storage,
		Database:        nil,
	}

	if c.PG != nil {
		db := &dbStatus{Postgres: c.Config.Postgres, Status: statusOnline}

		if err := c.PG.PGx.Ping(ctx); err != nil {
			db.Status = "err: " + err.Error()
			s.Status = statusDegraded
		}

		s.Database = db
	}

	return s
}

func (c *Container) serveStatus(w http.ResponseWriter, r *http.Request) {
	s := c.getSystemStatus(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if s.Status == statusOnline {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_ = json.NewEncoder(w).Encode(s)
}
