package main

import "github.com/vibast-solutions/ms-go-bike-bookings/cmd"

func main() {
	cmd.Execute()
}
