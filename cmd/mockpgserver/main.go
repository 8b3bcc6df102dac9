package main

import (
	"flag"
	"fmt"
	"os"

	"pgping/pgwire"
)

func main() {
	var port int

	flag.IntVar(&port, "p", 5432, "Port to listen on")
	flag.Parse()
	if !flag.Parsed() {
		flag.Usage()
		return
	}

	mock, err := pgwire.NewMockServer(port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating server: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Mock server listening at %s\n", mock.Address())
	fmt.Printf("Accepting user %q, database %q, password %q\n",
		pgwire.MockUserName, pgwire.MockDatabaseName, pgwire.MockPassword)

	stopChan := make(chan bool)
	<-stopChan
}
