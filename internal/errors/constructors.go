package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *ApigenError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigRequired(field string) *ApigenError {
	return New(CategoryConfig, SeverityFatal, "required configuration missing").
		WithContext("field", field)
}

func ValidationFailed(field, reason string) *ApigenError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Docstring and inventory errors

func DocstringFormatError(symbol, reason string) *ApigenError {
	return New(CategoryParse, SeverityFatal, "malformed overload docstring").
		WithContext("symbol", symbol).
		WithContext("reason", reason)
}

// InventoryLoadError is retryable. In watch mode the stub dump may still be
// mid-rewrite when the change event fires.
func InventoryLoadError(path string, cause error) *ApigenError {
	return WrapRetryable(cause, CategoryInventory, SeverityError, "failed to load stub inventory").
		WithContext("path", path)
}

// Page generation errors

func RenderError(page string, cause error) *ApigenError {
	return Wrap(cause, CategoryRender, SeverityFatal, "page generation failed").
		WithContext("page", page)
}

func XrefCollision(objectName, existing string) *ApigenError {
	return New(CategoryXref, SeverityFatal, "cross-reference target already registered").
		WithContext("object", objectName).
		WithContext("existing", existing)
}

func OutputError(operation string, cause error) *ApigenError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output operation failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *ApigenError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
