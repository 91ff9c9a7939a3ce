package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/core-tools/hsu-deploy/pkg/deployment"
	"github.com/core-tools/hsu-deploy/pkg/descriptor"
)

var errOptionsDiffer = errors.New("deployment options differ")

func (a *app) outputFormat(override string) string {
	if override != "" {
		return override
	}
	return a.settings.Output.Format
}

func (a *app) printOptions(options *deployment.DeploymentOptions, format string) error {
	var data []byte
	var err error
	switch a.outputFormat(format) {
	case "yaml":
		data, err = options.ToYAML()
	default:
		data, err = options.ToJSON()
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	_, err = a.out.Write(data)
	return err
}

type showCommand struct {
	File   string `short:"f" long:"file" required:"true" description:"options file (.json, .yaml or .yml)"`
	Format string `long:"format" choice:"json" choice:"yaml" description:"output format, defaults to the output.format setting"`

	app *app
}

func (c *showCommand) Execute(args []string) error {
	options, err := deployment.LoadFromFile(c.File)
	if err != nil {
		return err
	}
	return c.app.printOptions(options, c.Format)
}

type equalCommand struct {
	Args struct {
		Left  string `positional-arg-name:"left" description:"first options file"`
		Right string `positional-arg-name:"right" description:"second options file"`
	} `positional-args:"yes" required:"yes"`

	app *app
}

func (c *equalCommand) Execute(args []string) error {
	left, err := deployment.LoadFromFile(c.Args.Left)
	if err != nil {
		return err
	}
	right, err := deployment.LoadFromFile(c.Args.Right)
	if err != nil {
		return err
	}

	c.app.logger.Debugf("Comparing options, left hash: %016x, right hash: %016x", left.Hash(), right.Hash())
	if !left.Equal(right) {
		fmt.Fprintln(c.app.out, "different")
		return errOptionsDiffer
	}
	fmt.Fprintln(c.app.out, "equal")
	return nil
}

type validateCommand struct {
	File string `short:"f" long:"file" required:"true" description:"deployment descriptor (.yaml, .yml or .json)"`

	app *app
}

func (c *validateCommand) Execute(args []string) error {
	config, err := descriptor.LoadDescriptorFromFile(c.File)
	if err != nil {
		return err
	}
	if err := descriptor.ValidateDescriptor(config); err != nil {
		return err
	}

	deployments, err := descriptor.EnabledDeployments(config, c.app.logger)
	if err != nil {
		return err
	}
	for _, d := range deployments {
		fmt.Fprintf(c.app.out, "%s\t%s\t%s\n", d.Name, d.Unit, d.Options)
	}
	c.app.logger.Infof("Descriptor is valid, enabled deployments: %d", len(deployments))
	return nil
}

type saveCommand struct {
	Name string `short:"n" long:"name" required:"true" description:"name to store the options under"`
	File string `short:"f" long:"file" required:"true" description:"options file (.json, .yaml or .yml)"`

	app *app
}

func (c *saveCommand) Execute(args []string) error {
	options, err := deployment.LoadFromFile(c.File)
	if err != nil {
		return err
	}

	store, err := c.app.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	record, err := store.Put(context.Background(), c.Name, options)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.app.out, "%s\trevision %d\tchanged %t\n", record.Name, record.Revision, record.Changed)
	return nil
}

type getCommand struct {
	Name   string `short:"n" long:"name" required:"true" description:"stored name"`
	Format string `long:"format" choice:"json" choice:"yaml" description:"output format, defaults to the output.format setting"`

	app *app
}

func (c *getCommand) Execute(args []string) error {
	store, err := c.app.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	record, err := store.Get(context.Background(), c.Name)
	if err != nil {
		return err
	}
	return c.app.printOptions(record.Options, c.Format)
}

type listCommand struct {
	app *app
}

func (c *listCommand) Execute(args []string) error {
	store, err := c.app.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(context.Background())
	if err != nil {
		return err
	}
	for _, record := range records {
		fmt.Fprintf(c.app.out, "%s\t%d\t%s\n", record.Name, record.Revision, record.Options)
	}
	return nil
}

type deleteCommand struct {
	Name string `short:"n" long:"name" required:"true" description:"stored name"`

	app *app
}

func (c *deleteCommand) Execute(args []string) error {
	store, err := c.app.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Delete(context.Background(), c.Name)
}
