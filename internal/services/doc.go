// Package services is the business layer between the HTTP handlers and the
// ingestion engine.
//
// # Services
//
//   - DatasetService loads text or files into the processor, answers
//     queries about the current dataset, and exports it as CSV or XLSX.
//     Every load is traced, counted in the ingest metrics and announced to
//     websocket clients as "dataset:loaded" or "dataset:load_failed".
//   - HealthService reports liveness, readiness and version information.
//
// # Errors
//
// Queries made before any successful load return errors.ErrNoDataLoaded,
// which the HTTP layer renders as 404 NO_DATA_LOADED. Loads that produce no
// record fail with a parsing AppError wrapping
// dataprocessing.ErrNoUsableData and leave the current dataset in place.
//
// # Usage
//
//	svc := services.NewDatasetService(services.DatasetServiceDeps{
//	    Processor: dataprocessing.NewProcessor(logger, dataprocessing.ProcessorConfig{}),
//	    Notifier:  hub,
//	    Logger:    logger,
//	})
//	summary, err := svc.LoadFile(ctx, "covid.csv")
package services
