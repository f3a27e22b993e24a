package passes

import "errors"

var (
	// ErrConfiguration marks failures caused by missing simulator
	// state, such as running a pass without a traced graph.
	ErrConfiguration = errors.New("configuration_error")

	// ErrUnsupportedConfiguration marks module layouts the passes
	// cannot handle, such as a selected module without exactly one
	// output quantizer.
	ErrUnsupportedConfiguration = errors.New("unsupported_configuration")
)

type configurationError struct {
	msg string
}

func (e configurationError) Error() string {
	return e.msg
}

func (e configurationError) Unwrap() error {
	return ErrConfiguration
}

func newConfigurationError(msg string) error {
	return configurationError{msg: msg}
}

type unsupportedConfigurationError struct {
	msg string
}

func (e unsupportedConfigurationError) Error() string {
	return e.msg
}

func (e unsupportedConfigurationError) Unwrap() error {
	return ErrUnsupportedConfiguration
}

func newUnsupportedConfiguration(msg string) error {
	return unsupportedConfigurationError{msg: msg}
}
