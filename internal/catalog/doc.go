// Package catalog loads script tools and graph definitions from a YAML file
package catalog
