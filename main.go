// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/odooup/odooup/cmd/odooup"

func main() {
	cmd.Execute()
}
