package nocontract

func Helper() string { return "nothing to see" }
