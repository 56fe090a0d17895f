// Package parble provides a client for the Parble document processing API.
//
// Files are uploaded to Parble, classified into documents and their header
// fields extracted. This package wraps the REST API with typed responses and a
// small error taxonomy.
//
// # Architecture
//
//   - Settings: URL, API key and default timeout, from arguments or PARBLE_* env
//   - Session: headers, base URL resolution, timeouts and status to error mapping
//   - FilesResource: create, get and delete on the files collection
//   - Client: the low level API client exposing resources and HTTP verbs
//   - SDK: upload and retrieval helpers producing File values
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	sdk, err := parble.New("https://api.parble.com/v1/", "your-api-key", logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	file, err := sdk.UploadPath(ctx, "invoice.pdf", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, doc := range file.All() {
//		fmt.Println(doc.Type(), doc.Classification.Confidence)
//	}
//
//	pdf, err := file.PDF(ctx) // fetched once, then cached
//
// # Error Handling
//
// API, configuration and payload errors wrap ErrParble. Local I/O failures,
// such as UploadPath opening a missing file, are wrapped as they are and match
// os.ErrNotExist rather than ErrParble. API failures are *APIError values whose
// Kind is one of ErrNotFound, ErrUnauthorized, ErrInvalidCall, ErrCallTimeout
// or ErrAPICall; all of them also match ErrAPICall. Responses with a non-2xx
// status carry a *StatusError as their cause:
//
//	if errors.Is(err, parble.ErrNotFound) {
//		// Handle missing file
//	}
//
// Settings problems are reported as *ConfigurationError naming every invalid
// field, payloads that do not match the File model as *ValidationError.
package parble
