package metrics

import (
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// StartMetricsServer serves the prometheus registry on a separate listener.
func StartMetricsServer(logger logrus.FieldLogger, host string, port string) error {
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{
		Addr:    host + ":" + port,
		Handler: promhttp.Handler(),
	}

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	go func() {
		logger.Infof("metrics server listening on %v", srv.Addr)
		if err := srv.Serve(listener); err != nil {
			logger.WithError(err).Fatal("Error serving metrics")
		}
	}()

	return nil
}
