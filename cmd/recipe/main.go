package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/goplus/recipe/cmd/recipe/internal"
)

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	internal.Execute()
}
