package qr

// EncodingError reports a failure to build the QR code or composite its badge.
type EncodingError struct {
	Op  string
	Err error
}

func (e *EncodingError) Error() string {
	return "qr " + e.Op + ": " + e.Err.Error()
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}
