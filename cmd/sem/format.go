package main

// activeLabel renders a rule's active flag for table output.
func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// chatLabel renders a chat as "Name (id)" when a display name is stored.
func chatLabel(id, name string) string {
	if name == "" {
		return id
	}
	return name + " (" + id + ")"
}
