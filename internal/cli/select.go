package cli

import "github.com/manifoldco/promptui"

// SelectString prompts the user to pick one of items, adapted from the
// teacher repo's prompt.SelectString.
func SelectString(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
	}
	_, result, err := prompt.Run()
	return result, err
}
