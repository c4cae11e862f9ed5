package main

import "inhand/internal/app/server"

func main() {
	server.Run()
}
