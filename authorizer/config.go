package authorizer

// Config is the configuration for the authorizer application.
type Config struct {
	HTTPAddr    string
	ISO8583Addr string
	// BcryptCost overrides the credential encoder cost; 0 means the
	// library default. Tests lower it to keep hashing fast.
	BcryptCost int
}

func DefaultConfig() *Config {
	return &Config{
		HTTPAddr:    "localhost:8080",
		ISO8583Addr: "localhost:8583",
	}
}
