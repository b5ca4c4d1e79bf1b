package webapp

var Version = "0.1.0"
