// Package settings runs a small settings service on top of the hub package.
//
// Each setting has a Handler registered at its own address. Handlers validate
// writes, persist them through the StorageAgent, and broadcast a Changed
// payload to every addressable participant. Two brokers sit on every path:
// the AuditBroker observes each exchange and the PolicyBroker answers Set
// requests for denied settings before they reach a handler.
//
//	svc, err := settings.NewService(ctx, settings.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//	go svc.Run(ctx)
//
//	client, err := svc.NewClient(ctx)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	if err := client.Set(ctx, settings.SettingAudioVolume, "40"); err != nil {
//		return err
//	}
//	value, err := client.Get(ctx, settings.SettingAudioVolume)
package settings
