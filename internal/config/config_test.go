package config

import "testing"

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				App:  AppConfig{Name: "plc-gateway"},
				HTTP: HTTPConfig{Port: 8080},
				Log:  LogConfig{Level: "info"},
				PLC:  PLCConfig{PollPeriod: 1000000000, ReconnectBase: 1.0, ReconnectMax: 60.0},
			},
			wantErr: false,
		},
		{
			name: "missing app name",
			cfg: Config{
				HTTP: HTTPConfig{Port: 8080},
				Log:  LogConfig{Level: "info"},
				PLC:  PLCConfig{PollPeriod: 1, ReconnectBase: 1.0, ReconnectMax: 60.0},
			},
			wantErr: true,
		},
		{
			name: "invalid port - zero",
			cfg: Config{
				App: AppConfig{Name: "test"},
				PLC: PLCConfig{PollPeriod: 1, ReconnectBase: 1.0, ReconnectMax: 60.0},
			},
			wantErr: true,
		},
		{
			name: "invalid port - too high",
			cfg: Config{
				App:  AppConfig{Name: "test"},
				HTTP: HTTPConfig{Port: 70000},
				PLC:  PLCConfig{PollPeriod: 1, ReconnectBase: 1.0, ReconnectMax: 60.0},
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			cfg: Config{
				App:  AppConfig{Name: "test"},
				HTTP: HTTPConfig{Port: 8080},
				Log:  LogConfig{Level: "invalid"},
				PLC:  PLCConfig{PollPeriod: 1, ReconnectBase: 1.0, ReconnectMax: 60.0},
			},
			wantErr: true,
		},
		{
			name: "non-positive poll period",
			cfg: Config{
				App:  AppConfig{Name: "test"},
				HTTP: HTTPConfig{Port: 8080},
				Log:  LogConfig{Level: "info"},
				PLC:  PLCConfig{PollPeriod: 0, ReconnectBase: 1.0, ReconnectMax: 60.0},
			},
			wantErr: true,
		},
		{
			name: "reconnect max below base",
			cfg: Config{
				App:  AppConfig{Name: "test"},
				HTTP: HTTPConfig{Port: 8080},
				Log:  LogConfig{Level: "info"},
				PLC:  PLCConfig{PollPeriod: 1, ReconnectBase: 10.0, ReconnectMax: 5.0},
			},
			wantErr: true,
		},
		{
			name: "invalid pdf page size",
			cfg: Config{
				App:    AppConfig{Name: "test"},
				HTTP:   HTTPConfig{Port: 8080},
				Log:    LogConfig{Level: "info"},
				PLC:    PLCConfig{PollPeriod: 1, ReconnectBase: 1.0, ReconnectMax: 60.0},
				Export: ExportConfig{PDF: PDFConfig{PageSize: "Tabloid"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"prod", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		cfg := &Config{App: AppConfig{Environment: tt.env}}
		if got := cfg.IsProduction(); got != tt.want {
			t.Errorf("IsProduction() for %s = %v, want %v", tt.env, got, tt.want)
		}
	}
}
