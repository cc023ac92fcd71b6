// Package http implements the REST handlers of the epicli web service. It
// is a thin layer over the services package: handlers parse and validate
// requests, call one service method and render the result.
//
// # Routes
//
//	POST /api/dataset                 load JSON {"content"} / {"path"}, or a text/csv body
//	GET  /api/dataset                 load summary of the current dataset
//	GET  /api/dataset/records         records, filtered by ?location= and paged by ?offset=&limit=
//	GET  /api/dataset/monthly         monthly summaries in chronological order
//	GET  /api/dataset/statistics      dataset-wide statistics
//	GET  /api/dataset/locations       per-location totals
//	GET  /api/dataset/trend           month-over-month accumulated case change
//	GET  /api/dataset/series/{metric} one monthly chart series
//	GET  /api/dataset/structure       how the input was interpreted
//	GET  /api/dataset/export          download as ?format=csv|xlsx
//	POST /api/dataset/export          write the export into the export directory
//	GET  /api/dataset/files           loadable files in the data directory
//	GET  /api/health[/ready|/live]    probes
//	GET  /api/version                 build information
//
// Successful responses are {"status":"success","data":...}. Errors are RFC
// 7807 problem details produced by errors.ErrorHandler, for example
//
//	{
//	    "type": "/errors/dataset/not-loaded",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "No dataset has been loaded",
//	    "instance": "/api/dataset/monthly",
//	    "error_code": "NO_DATA_LOADED",
//	    "trace_id": "..."
//	}
package http
