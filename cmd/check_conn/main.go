// Command check_conn probes an external database from the command line,
// using the same execution gateway the server uses for connection tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"queryforge/internal/core"
	"queryforge/internal/execute"
)

func main() {
	dialect := flag.String("dialect", "postgresql", "dialect: postgresql, mysql or mssql")
	host := flag.String("host", "localhost", "database host")
	port := flag.Int("port", 5432, "database port")
	database := flag.String("db", "", "database name")
	username := flag.String("user", "", "database username")
	password := flag.String("password", "", "database password")
	timeout := flag.Duration("timeout", 10*time.Second, "probe timeout")
	flag.Parse()

	d, err := core.ParseDialect(*dialect)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	target := core.ConnectionTarget{
		Dialect:  d,
		Host:     *host,
		Port:     *port,
		Database: *database,
		Username: *username,
		Secret:   *password,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	executor := execute.NewQueryExecutor(0)
	if err := executor.Ping(ctx, target); err != nil {
		fmt.Printf("Connection test failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Connection to %s://%s:%d/%s OK\n", d, *host, *port, *database)
}
