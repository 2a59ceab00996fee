package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge"

	"github.com/brutella/hap"
	"github.com/brutella/hap/log"

	"github.com/urfave/cli/v2"

	"github.com/vishvananda/netlink"
)

func main() {
	var dir, file string
	var debug bool
	var readyDelay time.Duration

	app := cli.App{
		Name:  "BigAssFans homekit bridge",
		Usage: "server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Value:       "/var/db/HomeKitBridges/BAF",
				Usage:       "configuration directory",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "config",
				Value:       "baf.json",
				Usage:       "configuration file (.json or .yaml)",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Value:       false,
				Usage:       "enable debug",
				Destination: &debug,
			},
			&cli.DurationFlag{
				Name:        "ready-delay",
				Value:       2 * time.Second,
				Usage:       "how long the configured fans take to report ready",
				Destination: &readyDelay,
			},
		},
		Action: func(c *cli.Context) error {
			if debug {
				log.Debug.Enable()
			}

			fulldir, err := filepath.Abs(dir)
			if err != nil {
				log.Info.Panic("unable to get config directory", dir)
			}
			conf, err := bafhkbridge.LoadConfig(filepath.Join(fulldir, file))
			if err != nil {
				log.Info.Panic(err.Error())
			}

			// listen for interface status changes
			var linkstatuschan = make(chan netlink.LinkUpdate, 5)
			var disconnectchan = make(chan struct{})
			if err := netlink.LinkSubscribe(linkstatuschan, disconnectchan); err != nil {
				log.Info.Panic(err.Error())
			}

			// wait for signal to shut down
			sigch := make(chan os.Signal, 3)
			signal.Notify(sigch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)

			refresh := make(chan bool, 3)
			platform := bafhkbridge.NewPlatform(conf.Simulated(readyDelay), refresh)

			ctx, cancel := context.WithCancel(context.Background())
			var wg sync.WaitGroup

			if conf.StatusAddr != "" {
				wg.Add(1)
				go func(ctx context.Context) {
					defer wg.Done()
					bafhkbridge.StatusServer(ctx, conf.StatusAddr, platform)
				}(ctx)
			}

			if err := platform.Startup(ctx); err != nil {
				log.Info.Panic(err)
			}

			// does not change over time
			bridge := bafhkbridge.Bridge(conf.Name)
			var hapwaitgroup sync.WaitGroup

		DONE:
			for {
				hapctx, hapcancel := context.WithCancel(ctx)
				devices := platform.Devices()
				log.Info.Printf("serving %d fans", len(devices))
				hapserver, err := hap.NewServer(hap.NewFsStore(fulldir), bridge, devices...)
				if err != nil {
					log.Info.Panic(err)
				}
				if conf.Pin != "" {
					hapserver.Pin = conf.Pin
				}

				// serve HomeKit
				hapwaitgroup.Add(1)
				go func(ctx context.Context) {
					defer hapwaitgroup.Done()
					hapserver.ListenAndServe(ctx)
				}(hapctx)

				select {
				case <-refresh:
					log.Info.Printf("fan services changed, restarting")
					hapcancel()
					hapwaitgroup.Wait()
					// loop back around, publishing the new services
				case sig := <-sigch:
					log.Info.Printf("shutdown requested by signal: %s", sig)
					hapcancel()
					hapwaitgroup.Wait()
					break DONE
				case <-linkstatuschan:
					log.Info.Printf("interface change, restarting")
					hapcancel()
					hapwaitgroup.Wait()
					// loop back around
				}
			}
			close(disconnectchan)
			cancel()
			wg.Wait()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Info.Panic(err)
	}
}
