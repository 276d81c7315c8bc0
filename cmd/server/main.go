package main

import "stempel/internal/app/server"

func main() {
	server.Run()
}
