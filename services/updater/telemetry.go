package updater

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("services/updater")
