package benchmarks

import (
	"context"
	"io"
	"testing"

	"github.com/ammerola/warehouse-be/internal/core/domain"
	"github.com/ammerola/warehouse-be/internal/pkg/export"
	"github.com/ammerola/warehouse-be/test/helpers"
)

func BenchmarkInventoryOperations(b *testing.B) {
	ctx := context.Background()

	b.Run("CreateItem", func(b *testing.B) {
		svc, _ := seededService(0, 1)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = svc.CreateItem(ctx, helpers.TestItem(int32(i+1)))
		}
	})

	b.Run("GetItem", func(b *testing.B) {
		svc, _ := seededService(100, 10)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = svc.GetItem(ctx, int32(i%100+1))
		}
	})

	b.Run("ListItemsForWarehouse", func(b *testing.B) {
		svc, _ := seededService(1000, 10)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = svc.ListItemsForWarehouse(ctx, int32(i%10+1), 100)
		}
	})

	b.Run("AssignUnassign", func(b *testing.B) {
		svc, _ := seededService(0, 1)
		_, _ = svc.CreateItem(ctx, helpers.TestItem(1))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = svc.Assign(ctx, 1, 1)
			_, _ = svc.Unassign(ctx, 1, 1)
		}
	})

	b.Run("DeleteWarehouse", func(b *testing.B) {
		svc, _ := seededService(0, 1)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			b.StopTimer()
			id := int32(i + 100)
			mustCreateWarehouse(svc, id)
			for j := int32(0); j < 10; j++ {
				_, _ = svc.CreateItem(ctx, helpers.TestItem(id*100+j, helpers.InWarehouse(id)))
			}
			b.StartTimer()
			_, _ = svc.DeleteWarehouse(ctx, id)
		}
	})
}

func BenchmarkAudit(b *testing.B) {
	svc, _ := seededService(10000, 50)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = svc.Audit(ctx)
	}
}

func BenchmarkExportRendering(b *testing.B) {
	items, warehouses := exportFixture(1000, 20)

	b.Run("ItemsCSV", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = export.WriteItemsCSV(io.Discard, items)
		}
	})

	b.Run("WarehousesCSV", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = export.WriteWarehousesCSV(io.Discard, warehouses)
		}
	})

	b.Run("Workbook", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = export.WriteWorkbook(io.Discard, items, warehouses)
		}
	})

	b.Run("RenderSnapshot", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_, _ = export.Render(domain.ExportFormatCSV, items, warehouses)
		}
	})
}

func BenchmarkWarehouseMembership(b *testing.B) {
	w := &domain.Warehouse{ID: 1}
	for i := int32(0); i < 1000; i++ {
		w.Add(i)
	}

	b.Run("Contains", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = w.Contains(int32(i % 2000))
		}
	})

	b.Run("Remove", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			c := w.Clone()
			c.Remove(int32(i % 1000))
		}
	})
}
