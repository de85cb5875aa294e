package main

import "github.com/lbermudezd2020/appgasolinabueno/cmd"

func main() {
	cmd.Execute()
}
