package core

import (
	"errors"
	"testing"
)

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"postgresql", DialectPostgres, false},
		{"mysql", DialectMySQL, false},
		{"mssql", DialectMSSQL, false},
		{"oracle", "", true},
		{"POSTGRESQL", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDialect(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseDialect(%q) expected error", tt.in)
			}
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("ParseDialect(%q) error = %v, want ErrInvalidArgument", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDialect(%q) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseDialect(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDriverName(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectPostgres, "postgres"},
		{DialectMySQL, "mysql"},
		{DialectMSSQL, "sqlserver"},
		{Dialect("oracle"), ""},
	}
	for _, tt := range tests {
		if got := tt.dialect.DriverName(); got != tt.want {
			t.Fatalf("DriverName(%q) = %q, want %q", tt.dialect, got, tt.want)
		}
	}
}

func TestNewIDPrefix(t *testing.T) {
	a := NewID("conn")
	b := NewID("conn")
	if a == b {
		t.Fatal("NewID should not repeat")
	}
	if len(a) != len("conn_")+32 {
		t.Fatalf("unexpected id shape: %q", a)
	}
}
