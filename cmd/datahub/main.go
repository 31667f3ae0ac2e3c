package main

import "github.com/Lucartis/PrecisionAgriculture/internal/app"

func main() {
	app.New().Run()
}
