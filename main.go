package main

import "github.com/AlefLorenzo/DeliveryFoods/cmd"

func main() {
	cmd.Execute()
}
