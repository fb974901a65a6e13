package broken

func oops( {
